package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

func (s *Server) healthHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getStatsHandler отдаёт счётчики импортированных сущностей.
func (s *Server) getStatsHandler(ctx *gin.Context) {
	stats, err := s.store.GetImportStats(ctx)
	if err != nil {
		s.logger.Errorf("failed to get import stats: %v", err)
		ctx.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"documents":     stats.Documents,
		"contracts":     stats.Contracts,
		"awards":        stats.Awards,
		"organizations": stats.Organizations,
	})
}

type topBuyerResponse struct {
	OfficialName  string   `json:"official_name"`
	CountryCode   *string  `json:"country_code"`
	AwardCount    int64    `json:"award_count"`
	TotalValueEur *float64 `json:"total_value_eur"`
}

// getTopBuyersHandler отдаёт заказчиков с наибольшим числом наград.
// Параметр limit — от 1 до 100, по умолчанию 10.
func (s *Server) getTopBuyersHandler(ctx *gin.Context) {
	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
			return
		}
		limit = parsed
	}

	rows, err := s.store.ListTopBuyers(ctx, int32(limit))
	if err != nil {
		s.logger.Errorf("failed to list top buyers: %v", err)
		ctx.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	buyers := make([]topBuyerResponse, 0, len(rows))
	for _, row := range rows {
		item := topBuyerResponse{
			OfficialName: row.OfficialName,
			AwardCount:   row.AwardCount,
		}
		if row.CountryCode.Valid {
			item.CountryCode = &row.CountryCode.String
		}
		if row.TotalValueEur.Valid {
			item.TotalValueEur = &row.TotalValueEur.Float64
		}
		buyers = append(buyers, item)
	}

	ctx.JSON(http.StatusOK, gin.H{"buyers": buyers})
}

// getDocumentHandler отдаёт метаданные одного документа по doc_id.
func (s *Server) getDocumentHandler(ctx *gin.Context) {
	docID := ctx.Param("doc_id")

	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		s.logger.Errorf("failed to get document %s: %v", docID, err)
		ctx.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	resp := gin.H{
		"doc_id": doc.DocID,
	}
	if doc.Edition.Valid {
		resp["edition"] = doc.Edition.String
	}
	if doc.Version.Valid {
		resp["version"] = doc.Version.String
	}
	if doc.OfficialJournalRef.Valid {
		resp["official_journal_ref"] = doc.OfficialJournalRef.String
	}
	if doc.PublicationDate.Valid {
		resp["publication_date"] = doc.PublicationDate.Time.Format("2006-01-02")
	}
	if doc.SourceCountry.Valid {
		resp["source_country"] = doc.SourceCountry.String
	}

	ctx.JSON(http.StatusOK, resp)
}
