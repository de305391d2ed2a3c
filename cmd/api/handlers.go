package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/LexGuardAI/lexguard-mvp/engine/catalog"
	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
	"github.com/LexGuardAI/lexguard-mvp/engine/extract"
	"github.com/LexGuardAI/lexguard-mvp/engine/ingest"
	"github.com/LexGuardAI/lexguard-mvp/engine/rag"
	"github.com/LexGuardAI/lexguard-mvp/pkg/natsutil"
)

const (
	// sessionHeader carries the chat session id.
	sessionHeader = "X-Session-ID"
	// maxUploadBytes caps document uploads at 16 MiB.
	maxUploadBytes = 16 << 20
)

type server struct {
	rag      *rag.Service
	catalog  *catalog.Store
	nc       *nats.Conn
	pipeline ingest.Deps
	logger   *slog.Logger
}

// queryRequest is the JSON body shared by the query endpoints.
type queryRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleVulnerabilities(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.rag.Vulnerabilities(r.Context(), req.Query, req.Category)
	if err != nil {
		s.writeRAGError(w, r, err)
		return
	}
	writeRaw(w, report)
}

func (s *server) handleEmail(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	draft, err := s.rag.Email(r.Context(), req.Query, req.Category)
	if err != nil {
		s.writeRAGError(w, r, err)
		return
	}
	writeRaw(w, draft)
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Category string `json:"category,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply, err := s.rag.Chat(r.Context(), sessionID(r), req.Text, req.Category)
	if err != nil {
		s.writeRAGError(w, r, err)
		return
	}
	writeRaw(w, reply)
}

func (s *server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	turns := s.rag.History(sessionID(r))
	writeJSON(w, http.StatusOK, map[string]any{"history": turns})
}

func (s *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := s.rag.Ask(r.Context(), req.Query, req.Category)
	if err != nil {
		s.writeRAGError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": answer})
}

func (s *server) handleReview(w http.ResponseWriter, r *http.Request) {
	text, name, category, err := s.readDocumentBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text = extract.CollapseWhitespace(text)

	review, err := s.rag.Review(r.Context(), text)
	if err != nil {
		s.writeRAGError(w, r, err)
		return
	}

	// Reviewed documents are also indexed so later queries can see them.
	doc := domain.Document{ID: name, Name: name, Text: text, Category: category}
	if _, err := ingest.Run(r.Context(), s.pipeline, doc); err != nil {
		s.logger.Warn("review ingest failed", "doc_id", doc.ID, "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"document": name, "review": review})
}

// handleUploadDocument queues a document for ingestion and returns 202.
// The worker picks it up from NATS. With ?sync=1 the document is ingested
// in-request instead.
func (s *server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	text, name, category, err := s.readDocumentBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := domain.Document{
		ID:       name,
		Name:     name,
		Text:     extract.CollapseWhitespace(text),
		Category: category,
		QueuedAt: time.Now().UTC(),
	}
	if err := domain.ValidateDocument(doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("sync") == "1" {
		if ok, err := s.pipeline.Catalog.Exists(r.Context(), doc.ID); err == nil && ok {
			writeJSON(w, http.StatusOK, map[string]string{"id": doc.ID, "status": "exists"})
			return
		}
		if _, err := ingest.Run(r.Context(), s.pipeline, doc); err != nil {
			s.writeRAGError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": doc.ID, "status": "ingested"})
		return
	}

	if err := natsutil.Publish(r.Context(), s.nc, ingest.Subject, doc); err != nil {
		s.logger.Error("ingest enqueue failed", "doc_id", doc.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to queue document")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": doc.ID, "status": "queued"})
}

func (s *server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.catalog.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("catalog list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": entries})
}

// readDocumentBody accepts either a multipart upload under "file" or a
// JSON body {"name": ..., "text": ...}. Multipart files are run through
// text extraction by extension.
func (s *server) readDocumentBody(r *http.Request) (text, name, category string, err error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", "", "", errors.New("invalid multipart body")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", "", errors.New("file is required")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return "", "", "", errors.New("failed to read file")
		}

		name = filepath.Base(header.Filename)
		category = r.FormValue("category")
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			text, err = extract.FromPDF(data)
			if err != nil {
				return "", "", "", errors.New("failed to extract pdf text")
			}
		case ".docx":
			text, err = extract.FromDOCX(data)
			if err != nil {
				return "", "", "", errors.New("failed to extract docx text")
			}
		case ".txt", ".md":
			text = string(data)
		default:
			return "", "", "", errors.New("unsupported file type")
		}
		return text, name, category, nil
	}

	var req struct {
		Name     string `json:"name"`
		Text     string `json:"text"`
		Category string `json:"category,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", "", errors.New("invalid request body")
	}
	if req.Name == "" || req.Text == "" {
		return "", "", "", errors.New("name and text are required")
	}
	return req.Text, req.Name, req.Category, nil
}

func (s *server) writeRAGError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "err", err)

	var perr *domain.ParseError
	switch {
	case errors.Is(err, domain.ErrUnsupportedInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &perr):
		writeError(w, http.StatusBadGateway, "model returned malformed output")
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrRetrieval), errors.Is(err, domain.ErrCompletion):
		writeError(w, http.StatusBadGateway, "upstream service failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	return "default"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
	w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
