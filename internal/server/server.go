package server

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/blueprint/internal/config"
	"github.com/agenthands/blueprint/internal/core"
	"github.com/agenthands/blueprint/internal/core/aggregate"
	"github.com/agenthands/blueprint/internal/core/generate"
	"github.com/agenthands/blueprint/internal/core/model"
	"github.com/agenthands/blueprint/internal/core/plan"
	"github.com/agenthands/blueprint/internal/core/verify"
	"github.com/agenthands/blueprint/internal/knowledge"
	"github.com/agenthands/blueprint/internal/llm"
)

type Server struct {
	Orchestrator *core.Orchestrator
	Config       *config.Config
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: Could not load %s: %v. Using defaults", cfgPath, err)
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	// Override config with env vars if present
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}
	if envURI := os.Getenv("NEO4J_URI"); envURI != "" {
		cfg.Neo4j.URI = envURI
	}
	if envUser := os.Getenv("NEO4J_USER"); envUser != "" {
		cfg.Neo4j.User = envUser
	}
	if envPass := os.Getenv("NEO4J_PASSWORD"); envPass != "" {
		cfg.Neo4j.Password = envPass
	}
	if envRoot := os.Getenv("WORKSPACE_ROOT"); envRoot != "" {
		cfg.Workspace.Root = envRoot
	}

	// Default to Ollama if provider is empty
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = "."
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	structure, err := knowledge.NewNeo4jStructureSource(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Concurrency.SourceQPS)
	if err != nil {
		log.Fatalf("Failed to connect to graph database: %v", err)
	}
	content := knowledge.NewLocalContentSource(cfg.Workspace.Root, cfg.Workspace.IgnoreGlobs, cfg.Workspace.MaxFileBytes)

	aggregator := aggregate.NewAggregator(structure, content, llm.NewSimpleLLMReranker(llmClient), cfg.Context.MaxTokens, cfg.Context.MaxFiles)
	generator := generate.NewGenerator(llmClient)
	verifier := verify.NewVerifier(structure, content, cfg.Verification.MinConfidence, cfg.Concurrency.EvidenceWorkers)
	planner := plan.NewPlanner(generator)

	orchestrator := core.NewOrchestrator(aggregator, generator, verifier, planner, model.VerificationRunConfig{
		MinConfidence:   cfg.Verification.MinConfidence,
		MaxIterations:   cfg.Verification.MaxIterations,
		IncludeEvidence: cfg.Verification.IncludeEvidence,
	})

	return &Server{
		Orchestrator: orchestrator,
		Config:       cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/brd", s.GenerateBRD)
	v1.POST("/epics", s.GenerateEpics)
	v1.POST("/backlogs", s.GenerateBacklogs)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type GenerateBRDRequest struct {
	RequestText        string   `json:"request_text"`
	AffectedComponents []string `json:"affected_components"`
	MinConfidence      float64  `json:"min_confidence"`
	MaxIterations      int      `json:"max_iterations"`
	IncludeEvidence    bool     `json:"include_evidence"`
}

func (s *Server) GenerateBRD(c *gin.Context) {
	var req GenerateBRDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cfg := model.VerificationRunConfig{
		MinConfidence:   req.MinConfidence,
		MaxIterations:   req.MaxIterations,
		IncludeEvidence: req.IncludeEvidence || s.Config.Verification.IncludeEvidence,
	}

	out, err := s.Orchestrator.Generate(c.Request.Context(), req.RequestText, req.AffectedComponents, cfg)
	if err != nil {
		log.Printf("Failed to generate document: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}

type GenerateEpicsRequest struct {
	Document model.Document `json:"document"`
}

func (s *Server) GenerateEpics(c *gin.Context) {
	var req GenerateEpicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	out, err := s.Orchestrator.GenerateEpics(c.Request.Context(), &req.Document)
	if err != nil {
		log.Printf("Failed to derive epics: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}

type GenerateBacklogsRequest struct {
	Epics model.EpicsOutput `json:"epics"`
}

func (s *Server) GenerateBacklogs(c *gin.Context) {
	var req GenerateBacklogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	out, err := s.Orchestrator.GenerateBacklogs(c.Request.Context(), &req.Epics)
	if err != nil {
		log.Printf("Failed to derive backlog: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}
