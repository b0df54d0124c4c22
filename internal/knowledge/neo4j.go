package knowledge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Neo4jStructureSource implements StructureSource against a Neo4j (or
// bolt-compatible) code graph. Query results are memoized briefly since one
// verification pass tends to ask about the same components repeatedly, and
// all traffic goes through a shared rate limiter to bound load on the graph.
type Neo4jStructureSource struct {
	Driver  neo4j.DriverWithContext
	limiter *rate.Limiter
	memo    *cache.Cache
}

func NewNeo4jStructureSource(uri, username, password string, qps float64) (*Neo4jStructureSource, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Connected to Neo4j code graph")
	return &Neo4jStructureSource{
		Driver:  driver,
		limiter: rate.NewLimiter(rate.Limit(qps), int(qps)),
		memo:    cache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

func (s *Neo4jStructureSource) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

func (s *Neo4jStructureSource) executeQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return neo4j.EagerResult{}, err
	}
	result, err := neo4j.ExecuteQuery(ctx, s.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (s *Neo4jStructureSource) QueryStructure(ctx context.Context, scope []string) (*Structure, error) {
	key := "structure:" + strings.Join(scope, ",")
	if cached, ok := s.memo.Get(key); ok {
		return cached.(*Structure), nil
	}

	query := QueryStructureAll
	params := map[string]interface{}{}
	if len(scope) > 0 {
		query = QueryStructureScoped
		params["scope"] = scope
	}

	result, err := s.executeQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}

	structure := &Structure{}
	for _, record := range result.Records {
		comp := Component{
			Name:        stringValue(record, "name"),
			Type:        stringValue(record, "type"),
			Path:        stringValue(record, "path"),
			Description: stringValue(record, "description"),
		}
		if comp.Name == "" {
			continue
		}
		structure.Components = append(structure.Components, comp)

		rels, _ := record.Get("rels")
		if relList, ok := rels.([]interface{}); ok {
			for _, r := range relList {
				relMap, ok := r.(map[string]interface{})
				if !ok {
					continue
				}
				to, _ := relMap["to"].(string)
				relType, _ := relMap["rel"].(string)
				if to == "" || relType == "" {
					continue
				}
				structure.Relationships = append(structure.Relationships, Relationship{
					From: comp.Name,
					To:   to,
					Type: relType,
				})
			}
		}
	}

	s.memo.SetDefault(key, structure)
	return structure, nil
}

func (s *Neo4jStructureSource) GetDependencies(ctx context.Context, component string) (*Dependencies, error) {
	key := "deps:" + component
	if cached, ok := s.memo.Get(key); ok {
		return cached.(*Dependencies), nil
	}

	params := map[string]interface{}{"name": component}

	upstream, err := s.executeQuery(ctx, QueryUpstream, params)
	if err != nil {
		return nil, err
	}
	downstream, err := s.executeQuery(ctx, QueryDownstream, params)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{}
	for _, record := range upstream.Records {
		if name := stringValue(record, "name"); name != "" {
			deps.Upstream = append(deps.Upstream, name)
		}
	}
	for _, record := range downstream.Records {
		if name := stringValue(record, "name"); name != "" {
			deps.Downstream = append(deps.Downstream, name)
		}
	}

	s.memo.SetDefault(key, deps)
	return deps, nil
}

func (s *Neo4jStructureSource) SearchSimilar(ctx context.Context, text string, limit int) ([]SimilarMatch, error) {
	seen := make(map[string]bool)
	var matches []SimilarMatch

	for _, keyword := range keywords(text, 3) {
		result, err := s.executeQuery(ctx, QuerySimilarFeatures, map[string]interface{}{
			"keyword": keyword,
			"limit":   limit,
		})
		if err != nil {
			return nil, err
		}
		for _, record := range result.Records {
			name := stringValue(record, "name")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			matches = append(matches, SimilarMatch{
				Name:        name,
				Description: stringValue(record, "description"),
				Score:       1.0 / float64(len(matches)+1),
			})
		}
	}

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func keywords(text string, max int) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		w = strings.Trim(strings.ToLower(w), ".,:;\"'()")
		if len(w) > 3 {
			out = append(out, w)
		}
		if len(out) == max {
			break
		}
	}
	return out
}
