package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/phishguard/internal/threat"
	"github.com/jmerrifield20/phishguard/pkg/target"
	"go.uber.org/zap"
)

// checkRequest is the JSON body accepted by the check endpoints.
type checkRequest struct {
	URL string `json:"url"`
}

// Scorer is what the check endpoints need from a scorer.
type Scorer interface {
	threat.Scorer
	Explain(rawURL string) *threat.Report
	RuleNames() []string
	RuleSet() threat.RuleSet
}

var _ Scorer = (*threat.RuleBasedScorer)(nil)

// CheckHandler serves URL verdicts over HTTP.
type CheckHandler struct {
	scorer Scorer
	logger *zap.Logger
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(scorer Scorer, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{scorer: scorer, logger: logger}
}

// Register registers the versioned API routes on the given router group.
func (h *CheckHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/check", h.Check)
	rg.GET("/rules", h.Rules)
}

// RegisterLegacy registers the unversioned POST /check used by the browser
// extension popup.
func (h *CheckHandler) RegisterLegacy(r gin.IRoutes) {
	r.POST("/check", h.Check)
}

// Check handles POST /check with body {"url": "..."}.
// A URL without a scheme is scored as http://.
func (h *CheckHandler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rawURL, err := target.Normalize(req.URL)
	if err != nil {
		if errors.Is(err, target.ErrEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := h.scorer.Explain(rawURL)
	RecordCheck(report)

	h.logger.Debug("url checked",
		zap.String("request_id", RequestID(c)),
		zap.String("risk", string(report.Risk)),
		zap.Int("score", report.Score),
		zap.Int("hits", len(report.Hits)),
	)

	c.JSON(http.StatusOK, report.Verdict)
}

// Rules handles GET /rules and returns the active rule order and rule set.
func (h *CheckHandler) Rules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rules":              h.scorer.RuleNames(),
		"rule_set":           h.scorer.RuleSet(),
		"phishing_threshold": threat.ThresholdPhishing,
		"max_reasons":        threat.MaxReasons,
	})
}
