package library

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mattfehr/volleyball-rotation-tracker/auth"
	"github.com/mattfehr/volleyball-rotation-tracker/codec"
	"github.com/mattfehr/volleyball-rotation-tracker/domain"
	"github.com/rs/zerolog/log"
)

// MaxDocumentBytes bounds uploaded documents.
const MaxDocumentBytes = 1 << 20

var (
	ErrRotationSetNotFoundStr = "rotation-set-not-found"
	ErrMalformedDocumentStr   = "malformed-document"
	ErrInvalidShapeStr        = "invalid-shape"
	ErrDocumentTooLargeStr    = "document-too-large"
	ErrUnauthenticatedStr     = "unauthenticated"
	ErrServerTimeoutStr       = "server-timeout"
	ErrUnknownStr             = "unknown-error"
)

type LibraryService interface {
	Save(ctx context.Context, userId, id string, doc codec.Document) (string, error)
	Load(ctx context.Context, userId, id string) (codec.Document, error)
	List(ctx context.Context, userId string) ([]Summary, error)
	Delete(ctx context.Context, userId, id string) error
}

type libraryHandler struct {
	service LibraryService
}

func NewLibraryHandler(service LibraryService) *libraryHandler {
	return &libraryHandler{service: service}
}

// RegisterRoutes mounts the library on group, which must already require auth.
func (lh *libraryHandler) RegisterRoutes(group *gin.RouterGroup, writes ...gin.HandlerFunc) {
	group.GET("", lh.ListHandler)
	group.POST("", append(writes, lh.CreateHandler)...)
	group.POST("/import", lh.ImportHandler)
	group.GET("/:id", lh.LoadHandler)
	group.PUT("/:id", append(writes, lh.UpdateHandler)...)
	group.DELETE("/:id", append(writes, lh.DeleteHandler)...)
	group.GET("/:id/export", lh.ExportHandler)
}

func (lh *libraryHandler) fail(ctx *gin.Context, where string, err error) {
	switch {
	case errors.Is(err, domain.ErrRotationSetNotFound):
		ctx.String(http.StatusNotFound, ErrRotationSetNotFoundStr)
	case errors.Is(err, domain.ErrUserNotFound):
		ctx.String(http.StatusUnauthorized, ErrUnauthenticatedStr)
	case errors.Is(err, codec.ErrMalformedDocument):
		ctx.String(http.StatusBadRequest, ErrMalformedDocumentStr)
	case errors.Is(err, codec.ErrInvalidShape):
		ctx.String(http.StatusBadRequest, ErrInvalidShapeStr)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
	case errors.Is(err, context.Canceled):
		ctx.Status(499)
	default:
		log.Error().
			Err(err).
			Str("where", where).
			Str("user_id", ctx.GetString(auth.ContextKeyID)).
			Str("set_id", ctx.Param("id")).
			Msg("unexpected library error")
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
	}
	ctx.Abort()
}

// readDocument decodes a flat document from the request body or, for
// multipart requests, from the "file" field.
func readDocument(ctx *gin.Context) (codec.Document, bool) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxDocumentBytes)
	var body io.Reader = ctx.Request.Body

	if mediaType, _, _ := mime.ParseMediaType(ctx.GetHeader("Content-Type")); mediaType == "multipart/form-data" {
		header, err := ctx.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				ctx.String(http.StatusRequestEntityTooLarge, ErrDocumentTooLargeStr)
			} else {
				ctx.String(http.StatusBadRequest, ErrMalformedDocumentStr)
			}
			ctx.Abort()
			return codec.Document{}, false
		}
		if header.Size > MaxDocumentBytes {
			ctx.String(http.StatusRequestEntityTooLarge, ErrDocumentTooLargeStr)
			ctx.Abort()
			return codec.Document{}, false
		}
		file, err := header.Open()
		if err != nil {
			ctx.String(http.StatusBadRequest, ErrMalformedDocumentStr)
			ctx.Abort()
			return codec.Document{}, false
		}
		defer file.Close()
		body = file
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.String(http.StatusRequestEntityTooLarge, ErrDocumentTooLargeStr)
		} else {
			ctx.String(http.StatusBadRequest, ErrMalformedDocumentStr)
		}
		ctx.Abort()
		return codec.Document{}, false
	}

	doc, err := codec.Decode(data)
	if err != nil {
		if errors.Is(err, codec.ErrMalformedDocument) {
			ctx.String(http.StatusBadRequest, ErrMalformedDocumentStr)
		} else {
			ctx.String(http.StatusBadRequest, ErrInvalidShapeStr)
		}
		ctx.Abort()
		return codec.Document{}, false
	}
	return doc, true
}

func (lh *libraryHandler) ListHandler(ctx *gin.Context) {
	summaries, err := lh.service.List(ctx.Request.Context(), ctx.GetString(auth.ContextKeyID))
	if err != nil {
		lh.fail(ctx, "list", err)
		return
	}
	ctx.JSON(http.StatusOK, summaries)
}

func (lh *libraryHandler) LoadHandler(ctx *gin.Context) {
	doc, err := lh.service.Load(ctx.Request.Context(), ctx.GetString(auth.ContextKeyID), ctx.Param("id"))
	if err != nil {
		lh.fail(ctx, "load", err)
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (lh *libraryHandler) CreateHandler(ctx *gin.Context) {
	doc, ok := readDocument(ctx)
	if !ok {
		return
	}

	id, err := lh.service.Save(ctx.Request.Context(), ctx.GetString(auth.ContextKeyID), "", doc)
	if err != nil {
		lh.fail(ctx, "create", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"id": id})
}

func (lh *libraryHandler) UpdateHandler(ctx *gin.Context) {
	doc, ok := readDocument(ctx)
	if !ok {
		return
	}

	_, err := lh.service.Save(ctx.Request.Context(), ctx.GetString(auth.ContextKeyID), ctx.Param("id"), doc)
	if err != nil {
		lh.fail(ctx, "update", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (lh *libraryHandler) DeleteHandler(ctx *gin.Context) {
	err := lh.service.Delete(ctx.Request.Context(), ctx.GetString(auth.ContextKeyID), ctx.Param("id"))
	if err != nil {
		lh.fail(ctx, "delete", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ImportHandler checks an uploaded file and answers with its normalised
// content. Nothing is stored.
func (lh *libraryHandler) ImportHandler(ctx *gin.Context) {
	doc, ok := readDocument(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

func (lh *libraryHandler) ExportHandler(ctx *gin.Context) {
	doc, err := lh.service.Load(ctx.Request.Context(), ctx.GetString(auth.ContextKeyID), ctx.Param("id"))
	if err != nil {
		lh.fail(ctx, "export", err)
		return
	}

	data, err := codec.Encode(doc)
	if err != nil {
		lh.fail(ctx, "export", err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+codec.ExportFileName+`"`)
	ctx.Data(http.StatusOK, "application/json", data)
}
