package controllers

import (
	"net/http"
	"strings"

	"github.com/framewell/framewell-backend/api/middleware"
	"github.com/framewell/framewell-backend/api/responses"
	"github.com/framewell/framewell-backend/api/validators"
	"github.com/framewell/framewell-backend/internal/albums"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type createAlbumRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
}

// AlbumCreate adds an album to the active studio.
func AlbumCreate(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		var body createAlbumRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		album, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), albums.CreateAlbumInput{
			Name:        body.Name,
			Description: body.Description,
			Tags:        body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, album)
	}
}

// AlbumGet returns a single album in the active studio.
func AlbumGet(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		albumID, err := uuidParam(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		album, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), albumID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, album)
	}
}

type updateAlbumRequest struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	CoverPhotoID *string   `json:"cover_photo_id,omitempty" validate:"omitempty,uuid"`
}

// AlbumUpdate mutates album metadata, including the cover photo.
func AlbumUpdate(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		albumID, err := uuidParam(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAlbumRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := albums.UpdateAlbumInput{
			Name:        body.Name,
			Description: body.Description,
			Tags:        body.Tags,
		}
		if body.CoverPhotoID != nil {
			coverID, err := parseBodyUUID(*body.CoverPhotoID, "cover_photo_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CoverPhotoID = &coverID
		}

		album, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), albumID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, album)
	}
}

// AlbumDelete removes an album along with its photos and grants.
func AlbumDelete(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		albumID, err := uuidParam(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), albumID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// AlbumsList pages through the active studio's albums.
func AlbumsList(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		params, err := albumListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AlbumsSharedWithMe lists the albums a client account has been granted.
func AlbumsSharedWithMe(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListSharedWithMe(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type albumShareRequest struct {
	ClientUserID string `json:"client_user_id" validate:"required,uuid"`
}

// AlbumShare grants a studio client read access to an album.
func AlbumShare(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return albumShareHandler(svc, logg, func(r *http.Request, albumID, clientUserID uuid.UUID) error {
		return svc.ShareWithClient(r.Context(), middleware.ActorFromContext(r.Context()), albumID, clientUserID)
	})
}

// AlbumUnshare revokes a client's access to an album.
func AlbumUnshare(svc albums.Service, logg *logger.Logger) http.HandlerFunc {
	return albumShareHandler(svc, logg, func(r *http.Request, albumID, clientUserID uuid.UUID) error {
		return svc.UnshareWithClient(r.Context(), middleware.ActorFromContext(r.Context()), albumID, clientUserID)
	})
}

func albumShareHandler(svc albums.Service, logg *logger.Logger, apply func(r *http.Request, albumID, clientUserID uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		albumID, err := uuidParam(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body albumShareRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientUserID, err := parseBodyUUID(body.ClientUserID, "client_user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := apply(r, albumID, clientUserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func albumListParams(r *http.Request) (albums.ListParams, error) {
	params := albums.ListParams{
		Sort:   enums.AlbumSortCreatedAt,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("sort")); raw != "" {
		sort, err := enums.ParseAlbumSortField(raw)
		if err != nil {
			return albums.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort field")
		}
		params.Sort = sort
	}

	params.Desc = strings.EqualFold(r.URL.Query().Get("order"), "desc")

	limit, err := validators.ParseQueryInt(r, "limit", defaultPageSize, 1, maxPageSize)
	if err != nil {
		return albums.ListParams{}, err
	}
	params.Limit = limit

	return params, nil
}
