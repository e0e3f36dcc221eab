package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/ssau-fiit/waveot/operations"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type server struct {
	wavelets *registry
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1/waves/:wave/wavelets/:wavelet")
	v1.GET("/operations", s.handleGetOperations)
	v1.POST("/operations", s.handlePutOperations)
	v1.POST("/transform", s.handleTransform)

	doc := v1.Group("/document")
	doc.POST("/insert", s.handleDocumentInsert)
	doc.POST("/delete", s.handleDocumentDelete)
	doc.POST("/elements/insert", s.handleElementInsert)
	doc.POST("/elements/delete", s.handleElementDelete)
	doc.POST("/elements/delta", s.handleElementDelta)
	doc.POST("/elements/setpref", s.handleElementSetpref)

	v1.GET("/socket", s.handleSocket)
	return r
}

func indexOf(p *int) int {
	if p == nil {
		return operations.Unset
	}
	return *p
}

func serializeAll(ops []*operations.Operation) []map[string]any {
	out := make([]map[string]any, len(ops))
	for i, op := range ops {
		out[i] = op.Serialize()
	}
	return out
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, operations.ErrScopeMismatch):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, operations.ErrInvalidPayloadShape),
		errors.Is(err, operations.ErrNegativeLength),
		errors.Is(err, operations.ErrUnpositionedOperation),
		errors.Is(err, operations.ErrUnknownKind),
		errors.Is(err, operations.ErrNullOperation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// withWavelet loads the wavelet named in the path and runs fn under its lock.
// When fn reports a modification the queue is saved before body is sent.
func (s *server) withWavelet(c *gin.Context, fn func(w *wavelet) (body any, modified bool, err error)) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	w, err := s.wavelets.get(ctx, c.Param("wave"), c.Param("wavelet"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	body, modified, err := fn(w)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if modified {
		if err := s.wavelets.save(ctx, w); err != nil {
			log.Error().Err(err).Str("wave", c.Param("wave")).Str("wavelet", c.Param("wavelet")).Msg("failed to save pending operations")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *server) handleGetOperations(c *gin.Context) {
	drain := c.Query("drain") == "true"
	s.withWavelet(c, func(w *wavelet) (any, bool, error) {
		records := w.manager.Serialize(drain)
		return records, drain && len(records) > 0, nil
	})
}

func (s *server) handlePutOperations(c *gin.Context) {
	var records []map[string]any
	if err := c.BindJSON(&records); err != nil {
		log.Error().Err(err).Msg("could not parse request")
		return
	}

	ops := make([]*operations.Operation, len(records))
	for i, rec := range records {
		op, err := operations.Deserialize(rec)
		if err == nil {
			err = op.Validate()
		}
		if err == nil && op.IsNull() {
			err = fmt.Errorf("%v: %w", op, operations.ErrNullOperation)
		}
		if err != nil {
			abortWithError(c, fmt.Errorf("record %d: %w", i, err))
			return
		}
		ops[i] = op
	}

	s.withWavelet(c, func(w *wavelet) (any, bool, error) {
		for _, op := range ops {
			if op.WaveID != w.manager.WaveID() || op.WaveletID != w.manager.WaveletID() {
				return nil, false, fmt.Errorf("%v in %s/%s: %w", op, op.WaveID, op.WaveletID, operations.ErrScopeMismatch)
			}
		}
		w.manager.Put(ops)
		return gin.H{"pending": w.manager.Len()}, len(ops) > 0, nil
	})
}

func (s *server) handleTransform(c *gin.Context) {
	var record map[string]any
	if err := c.BindJSON(&record); err != nil {
		log.Error().Err(err).Msg("could not parse request")
		return
	}
	op, err := operations.Deserialize(record)
	if err != nil {
		abortWithError(c, err)
		return
	}

	s.withWavelet(c, func(w *wavelet) (any, bool, error) {
		out, err := w.manager.Transform(op)
		if err != nil {
			return nil, false, err
		}
		return serializeAll(out), !w.manager.IsEmpty(), nil
	})
}

// mutate binds the request body into req and applies fn to the wavelet's
// manager.
func mutate[T any](s *server, c *gin.Context, fn func(m *operations.OpManager, req *T) error) {
	var req T
	if err := c.BindJSON(&req); err != nil {
		log.Error().Err(err).Msg("could not parse request")
		return
	}
	s.withWavelet(c, func(w *wavelet) (any, bool, error) {
		before := w.manager.Len()
		if err := fn(w.manager, &req); err != nil {
			return nil, false, err
		}
		return gin.H{"pending": w.manager.Len()}, before > 0 || !w.manager.IsEmpty(), nil
	})
}

func (s *server) handleDocumentInsert(c *gin.Context) {
	mutate(s, c, func(m *operations.OpManager, r *InsertRequest) error {
		return m.DocumentInsert(r.BlipID, indexOf(r.Index), r.Content)
	})
}

func (s *server) handleDocumentDelete(c *gin.Context) {
	mutate(s, c, func(m *operations.OpManager, r *DeleteRequest) error {
		return m.DocumentDelete(r.BlipID, r.Start, r.End)
	})
}

func (s *server) handleElementInsert(c *gin.Context) {
	mutate(s, c, func(m *operations.OpManager, r *ElementInsertRequest) error {
		return m.DocumentElementInsert(r.BlipID, indexOf(r.Index), r.Type, r.Properties)
	})
}

func (s *server) handleElementDelete(c *gin.Context) {
	mutate(s, c, func(m *operations.OpManager, r *ElementDeleteRequest) error {
		return m.DocumentElementDelete(r.BlipID, indexOf(r.Index))
	})
}

func (s *server) handleElementDelta(c *gin.Context) {
	mutate(s, c, func(m *operations.OpManager, r *ElementDeltaRequest) error {
		return m.DocumentElementDelta(r.BlipID, indexOf(r.Index), operations.Delta{ID: r.ID, Fields: r.Delta})
	})
}

func (s *server) handleElementSetpref(c *gin.Context) {
	mutate(s, c, func(m *operations.OpManager, r *SetPrefRequest) error {
		return m.DocumentElementSetpref(r.BlipID, indexOf(r.Index), r.Key, r.Value)
	})
}
