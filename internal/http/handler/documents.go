package handler

import (
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"policytrack/internal/http/middleware"
	"policytrack/internal/service"
)

var errFileRequired = errors.New("file or staging_id is required")

// formContent reads the version content of a multipart request: either an uploaded
// "file" part or the "staging_id" of an earlier /match upload. The returned close
// func must be called once the service is done with the reader.
func formContent(c *fiber.Ctx) (service.Content, func(), error) {
	if id := c.FormValue("staging_id"); id != "" {
		return service.Content{StagingID: id}, func() {}, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return service.Content{}, nil, errFileRequired
	}
	f, err := fh.Open()
	if err != nil {
		return service.Content{}, nil, err
	}
	return service.Content{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Size:        fh.Size,
	}, func() { f.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// uploaderName prefers the session identity over a self-declared form field.
func uploaderName(c *fiber.Ctx) string {
	if user := middleware.UserFromCtx(c); user != "" {
		return user
	}
	return c.FormValue("uploaded_by")
}

func writeContentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errFileRequired) {
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", errFileRequired.Error())
	}
	return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
}

func validID(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// ListDocuments lists documents with limit & offset.
//
// @Summary List documents
// @Tags documents
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.DocumentListResult
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateDocument creates a document whose first version is published immediately.
//
// @Summary Create a document
// @Tags documents
// @Accept multipart/form-data
// @Param name formData string true "document name"
// @Param short_code formData string false "short code, e.g. HR-7"
// @Param notes formData string false "notes"
// @Param file formData file false "content"
// @Param staging_id formData string false "staged upload from /match"
// @Success 201 {object} service.PublishResult
// @Failure 400 {object} errorPayload
// @Router /documents [post]
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		content, done, err := formContent(c)
		if err != nil {
			return writeContentError(c, err)
		}
		defer done()

		res, err := docSvc.CreateDocument(c.UserContext(), service.CreateDocumentInput{
			Name:       c.FormValue("name"),
			ShortCode:  c.FormValue("short_code"),
			UploadedBy: uploaderName(c),
			Notes:      c.FormValue("notes"),
			Content:    content,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetDocument returns a document with its versions.
//
// @Summary Get a document
// @Tags documents
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UploadVersion submits a new version for review.
//
// @Summary Upload a new version
// @Tags versions
// @Accept multipart/form-data
// @Param id path string true "document id"
// @Param notes formData string false "what changed"
// @Param file formData file false "content"
// @Param staging_id formData string false "staged upload from /match"
// @Success 201 {object} model.Version
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/versions [post]
func UploadVersion(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		content, done, err := formContent(c)
		if err != nil {
			return writeContentError(c, err)
		}
		defer done()

		v, err := docSvc.UploadVersion(c.UserContext(), id, service.UploadVersionInput{
			UploadedBy: uploaderName(c),
			Notes:      c.FormValue("notes"),
			Content:    content,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// ApproveVersion publishes a pending version.
//
// @Summary Approve a pending version
// @Tags versions
// @Param id path string true "document id"
// @Param versionId path string true "version id"
// @Success 200 {object} service.PublishResult
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/versions/{versionId}/approve [post]
func ApproveVersion(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, versionID := c.Params("id"), c.Params("versionId")
		if !validID(id, versionID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := docSvc.Approve(c.UserContext(), id, versionID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// RejectVersion discards a pending version.
//
// @Summary Reject a pending version
// @Tags versions
// @Param id path string true "document id"
// @Param versionId path string true "version id"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/versions/{versionId}/reject [post]
func RejectVersion(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, versionID := c.Params("id"), c.Params("versionId")
		if !validID(id, versionID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Reject(c.UserContext(), id, versionID); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CompareVersions diffs two versions of a document.
//
// @Summary Compare two versions
// @Tags versions
// @Param id path string true "document id"
// @Param from query string true "base version id"
// @Param to query string true "compared version id"
// @Success 200 {object} service.CompareResult
// @Router /documents/{id}/compare [get]
func CompareVersions(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, from, to := c.Params("id"), c.Query("from"), c.Query("to")
		if from == "" || to == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_VERSIONS", "from and to are required")
		}
		if !validID(id, from, to) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := docSvc.Compare(c.UserContext(), id, from, to)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// MatchUpload stages an upload and ranks the documents it may be a new version of.
//
// @Summary Match an upload against existing documents
// @Tags match
// @Accept multipart/form-data
// @Param file formData file true "content"
// @Success 200 {object} service.StageResult
// @Router /match [post]
func MatchUpload(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := docSvc.Stage(c.UserContext(), service.StageInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: contentType(fh),
			Size:        fh.Size,
			UploadedBy:  uploaderName(c),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
