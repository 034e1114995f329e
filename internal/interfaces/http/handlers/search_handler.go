package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/veriflowhq/veriflow/internal/infrastructure/search/opensearch"
)

// VerdictSearcher queries the verdict index for flattened verification
// documents.
type VerdictSearcher interface {
	Search(ctx context.Context, q opensearch.SearchQuery) ([]opensearch.Document, error)
}

// SearchHandler exposes full-text search over completed verdicts.
type SearchHandler struct {
	searcher VerdictSearcher
}

// NewSearchHandler creates a handler over the given searcher.
func NewSearchHandler(searcher VerdictSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search handles GET /verifications/search. All query parameters are
// optional; without any, the newest verdicts are returned.
func (h *SearchHandler) Search(c *gin.Context) {
	q := opensearch.SearchQuery{
		Text:         c.Query("q"),
		CustomerID:   c.Query("customer_id"),
		RiskCategory: c.Query("risk_category"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			respondBadRequest(c, "limit must be an integer between 1 and 100")
			return
		}
		q.Limit = limit
	}

	docs, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": docs,
		"count":   len(docs),
	})
}
