package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medscribe/visitflow/internal/aggregate"
	"github.com/medscribe/visitflow/internal/appointment"
	"github.com/medscribe/visitflow/internal/auth"
	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/internal/store"
	"github.com/medscribe/visitflow/internal/summary"
)

// maxUploadBytes bounds a single multipart upload (full recordings
// included).
const maxUploadBytes = 200 << 20

// Server wires the HTTP surface to the appointment service.
type Server struct {
	engine  *gin.Engine
	service *appointment.Service
	logger  logger.Logger
}

func New(service *appointment.Service, verifier auth.Verifier, log logger.Logger) *Server {
	s := &Server{
		engine:  gin.New(),
		service: service,
		logger:  log,
	}
	s.engine.Use(gin.Recovery())
	s.engine.MaxMultipartMemory = 32 << 20

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/v1", auth.Middleware(verifier))
	appts := api.Group("/appointments/:id")
	appts.POST("/process", s.handleProcess)
	appts.POST("/chunks", s.handleUploadChunk)
	appts.POST("/recording", s.handleUploadRecording)
	appts.DELETE("/recording", s.handleDeleteRecording)
	appts.PUT("/notes", s.handleUploadNotes)
	appts.POST("/documents", s.handleUploadDocument)
	appts.POST("/questions", s.handleGenerateQuestions)

	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleProcess(c *gin.Context) {
	structured, err := s.service.Process(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schemaVersion": structured.SchemaVersion(),
		"summary":       structured,
	})
}

func (s *Server) handleUploadChunk(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	text, err := s.service.UploadAudioChunk(c.Request.Context(), auth.UserID(c), c.Param("id"), name, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": text})
}

func (s *Server) handleUploadRecording(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	text, err := s.service.UploadRecording(c.Request.Context(), auth.UserID(c), c.Param("id"), name, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": text})
}

func (s *Server) handleDeleteRecording(c *gin.Context) {
	if err := s.service.DeleteRecordingData(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleUploadNotes(c *gin.Context) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.service.UploadNotes(c.Request.Context(), auth.UserID(c), c.Param("id"), body.Notes); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) handleUploadDocument(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	uri, err := s.service.UploadDocument(c.Request.Context(), auth.UserID(c), c.Param("id"), name, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documentLink": uri})
}

func (s *Server) handleGenerateQuestions(c *gin.Context) {
	questions, err := s.service.GenerateQuestions(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// readUpload pulls the "file" part out of a multipart request. On failure
// it writes the error response and returns ok=false.
func (s *Server) readUpload(c *gin.Context) (name string, data []byte, ok bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return "", nil, false
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return "", nil, false
	}

	data, err = readAll(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
		return "", nil, false
	}

	// Browser recorders sometimes omit the filename; uploads still need a
	// unique object name.
	name = header.Filename
	if name == "" {
		name = uuid.NewString() + ".webm"
	}
	return name, data, true
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var chunkErr *appointment.ChunkError
	var parseErr *summary.ParseError
	var abnormal *summary.AbnormalStopError

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, aggregate.ErrEmptyCorpus):
		status = http.StatusBadRequest
	case errors.Is(err, summary.ErrInputTooLong):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr), errors.As(err, &abnormal), errors.Is(err, summary.ErrNoCandidates), errors.Is(err, summary.ErrEmptyResponse):
		status = http.StatusBadGateway
	case errors.As(err, &chunkErr):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
