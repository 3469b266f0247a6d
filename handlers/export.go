package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"quotedesk/services"
)

// loadExportPayload fetches the requester's quotation {id} and shapes it for
// export.
func loadExportPayload(e *core.RequestEvent, deps *Deps) (services.ExportPayload, error) {
	q, err := deps.Store.Get(e.Request.Context(), GetOwner(e.Request), e.Request.PathValue("id"))
	if err != nil {
		return services.ExportPayload{}, err
	}
	return services.BuildExportPayload(*q), nil
}

// sanitizeFilename replaces characters that are problematic in filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

func exportFilename(data services.ExportPayload, ext string) string {
	name := "Quotation_" + sanitizeFilename(data.QuotationNumber)
	if data.CustomerName != "" {
		name += "_" + sanitizeFilename(data.CustomerName)
	}
	return name + "." + ext
}

func writeDownload(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}

// HandleQuotationExport returns a handler that serves the export payload as
// JSON.
func HandleQuotationExport(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := loadExportPayload(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "quotation export", err)
		}
		return e.JSON(http.StatusOK, data)
	}
}

// HandleQuotationExportExcel returns a handler that generates and downloads
// an Excel file for a quotation.
func HandleQuotationExportExcel(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := loadExportPayload(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "export excel", err)
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			deps.Logger.Error("export excel: generate failed",
				zap.String("quotation", data.QuotationNumber), zap.Error(err))
			return e.JSON(http.StatusInternalServerError, errorBody{Error: "Failed to generate Excel file"})
		}

		return writeDownload(e,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			exportFilename(data, "xlsx"),
			xlsxBytes)
	}
}

// HandleQuotationExportPDF returns a handler that generates and downloads a
// PDF file for a quotation.
func HandleQuotationExportPDF(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := loadExportPayload(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "export pdf", err)
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			deps.Logger.Error("export pdf: generate failed",
				zap.String("quotation", data.QuotationNumber), zap.Error(err))
			return e.JSON(http.StatusInternalServerError, errorBody{Error: "Failed to generate PDF file"})
		}

		return writeDownload(e, "application/pdf", exportFilename(data, "pdf"), pdfBytes)
	}
}
