package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/modules/roster/presentation/controllers/dtos"
	"github.com/iota-uz/roster-import/pkg/middleware"
	"github.com/iota-uz/roster-import/pkg/server"
)

// UserImporter is implemented by services.ImportService.
type UserImporter interface {
	Import(ctx context.Context, input io.Reader) (*roster.ImportReport, error)
}

type ImportControllerOptions struct {
	MaxUploadSize   int64
	MaxUploadMemory int64
}

type ImportController struct {
	importer UserImporter
	opts     ImportControllerOptions
	basePath string
}

func NewImportController(importer UserImporter, opts ImportControllerOptions) server.Controller {
	return &ImportController{
		importer: importer,
		opts:     opts,
		basePath: "/import-users",
	}
}

func (c *ImportController) Key() string {
	return c.basePath
}

func (c *ImportController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.Create).Methods(http.MethodPost)
}

func (c *ImportController) Create(w http.ResponseWriter, r *http.Request) {
	logger := middleware.UseLogger(r.Context())

	if c.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.opts.MaxUploadSize)
	}
	if err := r.ParseMultipartForm(c.opts.MaxUploadMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "UPLOAD_INVALID_FORM", err.Error())
		return
	}
	files, ok := r.MultipartForm.File["file"]
	if !ok || len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "UPLOAD_NO_FILE", "no file found in multipart form")
		return
	}

	file, err := files[0].Open()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "UPLOAD_UNREADABLE", err.Error())
		return
	}
	defer func(file multipart.File) {
		if err := file.Close(); err != nil {
			log.Println(err)
		}
	}(file)

	report, err := c.importer.Import(r.Context(), file)
	if err != nil {
		var parseErr *roster.ParseError
		if errors.As(err, &parseErr) {
			logger.WithError(parseErr).Warn("roster file rejected")
			writeJSONError(w, http.StatusUnprocessableEntity, "ROSTER_PARSE_ERROR", parseErr.Error())
			return
		}
		logger.WithError(err).Error("import failed")
		writeJSONError(w, http.StatusInternalServerError, "IMPORT_FAILED", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dtos.NewImportResponse(report))
}
