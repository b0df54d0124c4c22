package knowledge

const (
	QueryStructureAll = `
		MATCH (c:Component)
		OPTIONAL MATCH (c)-[r:DEPENDS_ON|EXPOSES|CONTAINS]->(t:Component)
		RETURN c.name AS name, c.type AS type, c.path AS path,
			c.description AS description,
			collect({to: t.name, rel: type(r)}) AS rels
	`

	QueryStructureScoped = `
		MATCH (c:Component)
		WHERE c.name IN $scope
		OPTIONAL MATCH (c)-[r:DEPENDS_ON|EXPOSES|CONTAINS]->(t:Component)
		RETURN c.name AS name, c.type AS type, c.path AS path,
			c.description AS description,
			collect({to: t.name, rel: type(r)}) AS rels
	`

	QueryUpstream = `
		MATCH (c:Component {name: $name})-[:DEPENDS_ON]->(dep:Component)
		RETURN dep.name AS name
	`

	QueryDownstream = `
		MATCH (dep:Component)-[:DEPENDS_ON]->(c:Component {name: $name})
		RETURN dep.name AS name
	`

	QuerySimilarFeatures = `
		MATCH (f:Feature)
		WHERE toLower(f.description) CONTAINS toLower($keyword)
		RETURN f.name AS name, f.description AS description
		LIMIT $limit
	`
)
