package controllers

import (
	"net/http"
	"strings"

	"github.com/framewell/framewell-backend/api/middleware"
	"github.com/framewell/framewell-backend/api/responses"
	"github.com/framewell/framewell-backend/api/validators"
	"github.com/framewell/framewell-backend/internal/photos"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/logger"
)

type presignUploadRequest struct {
	FileName    string `json:"file_name" validate:"required,min=1,max=255"`
	ContentType string `json:"content_type" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,gt=0"`
}

// PhotoPresignUpload creates a pending photo row and returns a signed PUT URL
// the browser uploads against directly.
func PhotoPresignUpload(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		albumID, err := uuidParam(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body presignUploadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PresignUpload(r.Context(), middleware.ActorFromContext(r.Context()), photos.PresignInput{
			AlbumID:     albumID,
			FileName:    body.FileName,
			ContentType: body.ContentType,
			SizeBytes:   body.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PhotoConfirmUpload flips a pending photo to uploaded once the object exists.
func PhotoConfirmUpload(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		photoID, err := uuidParam(r, "photoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photo, err := svc.ConfirmUpload(r.Context(), middleware.ActorFromContext(r.Context()), photoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, photo)
	}
}

// PhotoDelete removes the photo row and queues the stored object for cleanup.
func PhotoDelete(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		photoID, err := uuidParam(r, "photoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), photoID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// AlbumPhotosList pages through an album's photos. Studio members browse
// through their active studio; client accounts only see albums granted to
// them, with signed read URLs attached.
func AlbumPhotosList(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		albumID, err := uuidParam(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := photoListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var page *photos.ListResult
		if middleware.UserTypeFromContext(r.Context()) == string(enums.UserTypeClient) {
			userID, err := actorUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			page, err = svc.ListForClient(r.Context(), userID, albumID, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			page, err = svc.List(r.Context(), middleware.ActorFromContext(r.Context()), albumID, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, page)
	}
}

func photoListParams(r *http.Request) (photos.ListParams, error) {
	params := photos.ListParams{
		Sort:   enums.PhotoSortCreatedAt,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("sort")); raw != "" {
		sort, err := enums.ParsePhotoSortField(raw)
		if err != nil {
			return photos.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort field")
		}
		params.Sort = sort
	}

	params.Desc = strings.EqualFold(r.URL.Query().Get("order"), "desc")

	limit, err := validators.ParseQueryInt(r, "limit", defaultPageSize, 1, maxPageSize)
	if err != nil {
		return photos.ListParams{}, err
	}
	params.Limit = limit

	return params, nil
}
