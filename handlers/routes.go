package handlers

import (
	"github.com/pocketbase/pocketbase/core"
)

// APIPrefix is where the quotation desk routes are mounted.
const APIPrefix = "/api/quotedesk"

// Register mounts every route on the serve event's router.
func Register(se *core.ServeEvent, deps *Deps) {
	api := se.Router.Group(APIPrefix)
	api.BindFunc(OwnerMiddleware())

	api.GET("/catalog", HandleCatalogSearch(deps))
	api.POST("/catalog", HandleCatalogCreate(deps))
	api.GET("/catalog/{id}", HandleCatalogGet(deps))
	api.PATCH("/catalog/{id}", HandleCatalogUpdate(deps))
	api.DELETE("/catalog/{id}", HandleCatalogDelete(deps))

	api.POST("/drafts", HandleDraftCreate(deps))
	api.GET("/drafts/{id}", HandleDraftGet(deps))
	api.PATCH("/drafts/{id}", HandleDraftUpdate(deps))
	api.DELETE("/drafts/{id}", HandleDraftDelete(deps))
	api.POST("/drafts/{id}/items", HandleDraftAddItem(deps))
	api.PATCH("/drafts/{id}/items/{index}", HandleDraftUpdateItem(deps))
	api.DELETE("/drafts/{id}/items/{index}", HandleDraftRemoveItem(deps))
	api.POST("/drafts/{id}/save", HandleDraftSave(deps))

	api.GET("/quotations", HandleQuotationList(deps))
	api.GET("/quotations/{id}", HandleQuotationGet(deps))
	api.DELETE("/quotations/{id}", HandleQuotationDelete(deps))
	api.GET("/quotations/{id}/export", HandleQuotationExport(deps))
	api.GET("/quotations/{id}/export/excel", HandleQuotationExportExcel(deps))
	api.GET("/quotations/{id}/export/pdf", HandleQuotationExportPDF(deps))
}
