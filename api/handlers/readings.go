package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/orchestrator"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
	"github.com/gin-gonic/gin"
)

// Provider is the read-side surface of the orchestrator.
type Provider interface {
	Latest() []models.OutputRecord
	Unit(id string) (models.OutputRecord, error)
	Wake(ctx context.Context) error
	SubscribeAllEvents() <-chan *models.Event
}

type ReadingsHandler struct {
	provider Provider
}

func NewReadingsHandler(provider Provider) *ReadingsHandler {
	return &ReadingsHandler{provider: provider}
}

type ReadingsResponse struct {
	Count    int                   `json:"count"`
	Readings []models.OutputRecord `json:"readings"`
}

// List returns the latest evaluated record for every unit, in fleet order.
// Serving the batch counts as consumer activity, so the generator is woken
// as a side effect.
func (h *ReadingsHandler) List(c *gin.Context) {
	h.touch(c)

	batch := h.provider.Latest()
	if batch == nil {
		batch = []models.OutputRecord{}
	}

	c.JSON(http.StatusOK, ReadingsResponse{
		Count:    len(batch),
		Readings: batch,
	})
}

// Get returns the latest record for one unit.
func (h *ReadingsHandler) Get(c *gin.Context) {
	h.touch(c)

	rec, err := h.provider.Unit(c.Param("id"))
	if err != nil {
		if errors.Is(err, orchestrator.ErrUnitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Wake explicitly re-arms the generator after an inactivity pause.
func (h *ReadingsHandler) Wake(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.provider.Wake(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to wake generator"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "running"})
}

func (h *ReadingsHandler) touch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// Reads should never fail because the activity write did.
	_ = h.provider.Wake(ctx)
}
