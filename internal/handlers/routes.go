package handlers

import "net/http"

// Register mounts every application route on mux. wrap guards the routes
// that need a signed-in operator.
func Register(mux *http.ServeMux, d Deps, wrap func(http.HandlerFunc) http.Handler) {
	res := NewResources(d)
	companies := NewCompanyHandler(d)
	equipment := NewEquipmentHandler(d)
	documents := NewDocumentHandler(d)

	res.Companies.Detail = companies.Detail
	res.Assets.Detail = equipment.AssetDetail
	res.Kits.Detail = equipment.KitDetail
	res.Documents.Detail = documents.Detail

	NewAuthHandler(d).Routes(mux)
	NewExportHandler(d).Routes(mux, wrap)
	NewPageHandler(d).Routes(mux, wrap)
	companies.Routes(mux, wrap)
	equipment.Routes(mux, wrap)
	documents.Routes(mux, wrap)

	res.Companies.Routes(mux, wrap)
	res.Contacts.Routes(mux, wrap)
	res.Categories.Routes(mux, wrap)
	res.Assets.Routes(mux, wrap)
	res.Kits.Routes(mux, wrap)
	res.Maintenance.Routes(mux, wrap)
	res.Installations.Routes(mux, wrap)
	res.Requests.Routes(mux, wrap)
	res.Documents.Routes(mux, wrap)
}
