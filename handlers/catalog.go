package handlers

import (
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

type catalogPageResponse struct {
	services.CatalogPage
	PageCount int `json:"pageCount"`
}

// queryInt reads an optional integer query parameter.
func queryInt(e *core.RequestEvent, name string) (int, bool) {
	raw := e.Request.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HandleCatalogSearch returns a handler that pages through catalog entries
// matching the q parameter.
func HandleCatalogSearch(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		limit, ok := queryInt(e, "limit")
		if !ok {
			return badRequest(e, "limit must be an integer")
		}
		offset, ok := queryInt(e, "offset")
		if !ok {
			return badRequest(e, "offset must be an integer")
		}

		page, err := deps.Searcher.Search(e.Request.Context(), services.CatalogQuery{
			Query:  e.Request.URL.Query().Get("q"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return respondError(e, deps.Logger, "catalog search", err)
		}
		return e.JSON(http.StatusOK, catalogPageResponse{CatalogPage: page, PageCount: page.PageCount()})
	}
}

// HandleCatalogGet returns a handler that serves a single catalog entry.
func HandleCatalogGet(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, err := deps.Catalog.Get(e.Request.Context(), e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, deps.Logger, "catalog get", err)
		}
		return e.JSON(http.StatusOK, entry)
	}
}

// HandleCatalogCreate returns a handler that adds a catalog entry.
func HandleCatalogCreate(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var entry services.CatalogEntry
		if err := e.BindBody(&entry); err != nil {
			return badRequest(e, "invalid catalog entry body")
		}
		entry.ID = ""

		created, err := deps.Catalog.Create(e.Request.Context(), entry)
		if err != nil {
			return respondError(e, deps.Logger, "catalog create", err)
		}
		deps.invalidateCatalog(e.Request.Context())
		return e.JSON(http.StatusCreated, created)
	}
}

// HandleCatalogUpdate returns a handler that patches a catalog entry. Fields
// missing from the body keep their stored values.
func HandleCatalogUpdate(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		entry, err := deps.Catalog.Get(e.Request.Context(), id)
		if err != nil {
			return respondError(e, deps.Logger, "catalog update", err)
		}
		if err := e.BindBody(&entry); err != nil {
			return badRequest(e, "invalid catalog entry body")
		}
		entry.ID = id

		updated, err := deps.Catalog.Update(e.Request.Context(), entry)
		if err != nil {
			return respondError(e, deps.Logger, "catalog update", err)
		}
		deps.invalidateCatalog(e.Request.Context())
		return e.JSON(http.StatusOK, updated)
	}
}

// HandleCatalogDelete returns a handler that removes a catalog entry.
func HandleCatalogDelete(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := deps.Catalog.Delete(e.Request.Context(), e.Request.PathValue("id")); err != nil {
			return respondError(e, deps.Logger, "catalog delete", err)
		}
		deps.invalidateCatalog(e.Request.Context())
		return e.NoContent(http.StatusNoContent)
	}
}
