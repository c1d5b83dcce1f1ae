// Package api wires the decision pipeline behind HTTP handlers: language
// resolution, engine selection, cooldown policy, translation, localization
// and the OCR proxy.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safeplate/server/internal/ai"
	"safeplate/server/internal/card"
	"safeplate/server/internal/localize"
	"safeplate/server/internal/ocr"
	"safeplate/server/internal/store"
)

// Config defines server dependencies.
type Config struct {
	AllowedOrigins []string

	UseAI        bool
	AIOnly       bool
	ProviderName string
	OpenAI       ai.ChatConfig
	Gemini       ai.GeminiConfig

	OCREndpoint string
	OCRTimeout  time.Duration

	DBPath   string
	SilentDB bool
}

// decisionProducer is the slice of *ai.Producer the handlers depend on.
type decisionProducer interface {
	Generate(ctx context.Context, scannedText string) (*ai.Decision, error)
	TranslateCard(ctx context.Context, c card.DecisionCard, language string) (card.DecisionCard, error)
	TranslateLabels(ctx context.Context, language string) (localize.LabelSet, error)
	Provider() ai.Provider
}

// Server wires HTTP handlers with the decision engines and persistence.
type Server struct {
	producer       decisionProducer
	cooldown       *ai.Cooldown
	db             *store.Database
	ocrClient      *ocr.Client
	allowedOrigins []string
	useAI          bool
	aiOnly         bool

	// language -> localize.LabelSet, populated once per language.
	labelCache sync.Map
}

// NewServer constructs the API server. The generative producer, the label
// store and the OCR client are all optional; the heuristic engine keeps the
// decision endpoint serving without any of them.
func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		cooldown:       ai.NewCooldown(),
		allowedOrigins: cfg.AllowedOrigins,
		useAI:          cfg.UseAI,
		aiOnly:         cfg.AIOnly,
	}

	if cfg.UseAI {
		provider, err := buildProvider(cfg)
		if err != nil {
			if errors.Is(err, ai.ErrMissingCredentials) && !cfg.AIOnly {
				logrus.Warn("generative provider credentials missing, falling back to heuristic engine")
				s.useAI = false
			} else {
				return nil, fmt.Errorf("generative provider: %w", err)
			}
		} else {
			s.producer = ai.NewProducer(provider)
		}
	} else if cfg.AIOnly {
		return nil, errors.New("ai-only mode requires the generative engine")
	}

	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath, cfg.SilentDB)
		if err != nil {
			return nil, err
		}
		s.db = db
	}

	if cfg.OCREndpoint != "" {
		client, err := ocr.NewClient(ocr.Config{Endpoint: cfg.OCREndpoint, Timeout: cfg.OCRTimeout})
		if err != nil {
			return nil, fmt.Errorf("ocr client: %w", err)
		}
		s.ocrClient = client
	}

	return s, nil
}

func buildProvider(cfg Config) (ai.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ProviderName)) {
	case "gemini":
		return ai.NewGeminiProvider(context.Background(), cfg.Gemini)
	case "", "openai":
		return ai.NewChatProvider(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.ProviderName)
	}
}

// Close releases the server's persistent resources.
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Router configures gin routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/health", s.handleHealth)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/decision", s.handleDecision)
		apiGroup.POST("/ocr", s.handleOCR)
		apiGroup.GET("/debug/ai", s.handleDebugAI)
		apiGroup.POST("/debug/ai-decision", s.handleDebugAIDecision)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDebugAI reports the generative engine's configuration and cooldown
// state without making a provider call.
func (s *Server) handleDebugAI(c *gin.Context) {
	resp := gin.H{
		"enabled":         s.useAI && s.producer != nil,
		"aiOnly":          s.aiOnly,
		"cooldownSeconds": int(s.cooldown.Remaining().Round(time.Second).Seconds()),
	}
	if s.producer != nil {
		if provider := s.producer.Provider(); provider != nil {
			resp["provider"] = provider.Name()
			resp["model"] = provider.Model()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleDebugAIDecision exercises the generative pipeline directly, with no
// translation, localization or heuristic fallback.
func (s *Server) handleDebugAIDecision(c *gin.Context) {
	if s.producer == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:  "ai disabled",
			Reason: "no generative provider configured",
		})
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Reason: err.Error()})
		return
	}

	decision, err := s.producer.Generate(c.Request.Context(), req.ScannedText)
	if err != nil {
		status := http.StatusBadGateway
		resp := ErrorResponse{Error: "ai decision failed", Reason: err.Error()}
		var derr *ai.DecisionError
		if errors.As(err, &derr) && derr.RateLimited() {
			status = http.StatusTooManyRequests
			resp.RetryAfterSeconds = derr.RetryAfterSeconds
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"decisionCard":     decision.Card,
		"decisionCardText": decision.Text,
	})
}

// handleOCR proxies an image to the recognition service. Failures are never
// folded into the decision pipeline as empty text; the caller retries.
func (s *Server) handleOCR(c *gin.Context) {
	if s.ocrClient == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:  "ocr unavailable",
			Reason: "no ocr endpoint configured",
		})
		return
	}
	var req OCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Reason: err.Error()})
		return
	}

	text, err := s.ocrClient.Recognize(c.Request.Context(), req.Image, req.PSM)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrInvalidImage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image", Reason: err.Error()})
		case errors.Is(err, ocr.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "ocr unavailable", Reason: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "ocr failed", Reason: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, OCRResponse{Text: text})
}
