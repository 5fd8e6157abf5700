// Package i18n holds the UI message catalogue. Spanish is the default
// language; English is the alternative.
package i18n

import (
	"context"
	"strings"
)

const (
	ES      = "es"
	EN      = "en"
	Default = ES
)

type langKey struct{}

// WithLang stores the language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, Normalize(lang))
}

// LangFromContext returns the stored language or the default.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return Default
}

// Normalize maps any value to a supported language.
func Normalize(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case EN:
		return EN
	default:
		return ES
	}
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool { return lang == ES || lang == EN }

// DetectLanguage picks the first supported tag of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if Supported(base) {
			return base
		}
	}
	return Default
}

// T translates code. Unknown languages use the default catalogue; unknown codes return the code.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

var messages = map[string]map[string]string{
	ES: {
		// validation
		"required":         "Requerido",
		"invalid_choice":   "Opción no válida",
		"invalid_nit":      "NIT inválido (9 a 10 dígitos)",
		"invalid_email":    "Correo electrónico inválido",
		"invalid_phone":    "Celular inválido (+57 3XXXXXXXXX)",
		"invalid_price":    "Debe ser un valor numérico no negativo",
		"end_before_start": "La fecha final es anterior a la inicial",
		"must_be_positive": "Debe ser mayor que cero",
		"out_of_range":     "Fuera de rango",

		// errors
		"duplicate":           "Ya existe un registro con este valor. Use un número diferente.",
		"invalid_reference":   "Referencia inválida",
		"not_found":           "Registro no encontrado",
		"store_error":         "Error al guardar los datos",
		"attachment_failed":   "Error al subir o eliminar el archivo",
		"invalid_credentials": "Correo o contraseña incorrectos",

		// flashes
		"saved":        "Guardado correctamente",
		"deleted":      "Eliminado correctamente",
		"totals_saved": "Totales guardados",

		// navigation
		"nav.dashboard":     "Inicio",
		"nav.companies":     "Empresas",
		"nav.categories":    "Categorías",
		"nav.assets":        "Activos",
		"nav.kits":          "Kits",
		"nav.maintenance":   "Mantenimientos",
		"nav.installations": "Instalaciones",
		"nav.requests":      "Solicitudes",
		"nav.documents":     "Documentos",
		"nav.issuer":        "Empresa emisora",
		"nav.logout":        "Cerrar sesión",

		// common labels
		"new":         "Nuevo",
		"edit":        "Editar",
		"delete":      "Eliminar",
		"save":        "Guardar",
		"cancel":      "Cancelar",
		"search":      "Buscar",
		"export_csv":  "Exportar CSV",
		"export_xlsx": "Exportar Excel",
		"no_records":  "No hay registros",
		"login":       "Iniciar sesión",
		"email":       "Correo",
		"password":    "Contraseña",
		"name":        "Nombre",
		"status":      "Estado",
		"kind":        "Tipo",
		"priority":    "Prioridad",
		"created_at":  "Creado",

		// columns
		"tax_id":       "NIT",
		"legal_name":   "Razón social",
		"trade_name":   "Nombre comercial",
		"phone":        "Teléfono",
		"city":         "Ciudad",
		"address":      "Dirección",
		"brand":        "Marca",
		"model":        "Modelo",
		"serial":       "Serie",
		"category":     "Categoría",
		"availability": "Disponibilidad",
		"stock":        "Existencias",
		"components":   "Componentes",
		"title":        "Título",
		"client":       "Cliente",
		"start_date":   "Fecha inicio",
		"end_date":     "Fecha fin",
		"cost":         "Costo",
		"progress":     "Avance",
		"company":      "Empresa",
		"number":       "Número",
		"issue_date":   "Fecha de emisión",
		"total":        "Total",
		"days":         "Días",
		"description":  "Descripción",

		// totals
		"subtotal":     "Subtotal",
		"discount":     "Descuento",
		"tax_rate":     "IVA (%)",
		"tax_amount":   "IVA",
		"other_taxes":  "Otros impuestos",
		"assets_lines": "Activos",
		"quantity":     "Cantidad",
		"unit_price":   "Precio unitario",
		"line_total":   "Total línea",
		"download_pdf": "Descargar PDF",

		// enums
		"active":           "Activo",
		"inactive":         "Inactivo",
		"equipment":        "Equipo",
		"tool":             "Herramienta",
		"equipment_kit":    "Kit de equipos",
		"tool_case":        "Maletín de herramientas",
		"available":        "Disponible",
		"rented":           "Alquilado",
		"in_maintenance":   "En mantenimiento",
		"reserved":         "Reservado",
		"current":          "Vigente",
		"in_certification": "En certificación",
		"expiring_soon":    "Por vencer",
		"expired":          "Vencido",
		"n_a":              "N/A",
		"preventive":       "Preventivo",
		"corrective":       "Correctivo",
		"predictive":       "Predictivo",
		"emergency":        "Emergencia",
		"low":              "Baja",
		"medium":           "Media",
		"high":             "Alta",
		"critical":         "Crítica",
		"installation":     "Instalación",
		"dismantling":      "Desmontaje",
		"relocation":       "Reubicación",
		"expansion":        "Ampliación",
		"pending":          "Pendiente",
		"in_progress":      "En progreso",
		"completed":        "Completado",
		"cancelled":        "Cancelado",
		"purchase_order":   "Orden de compra",
		"quote":            "Cotización",
		"invoice":          "Factura",
		"draft":            "Borrador",
		"sent":             "Enviado",
		"approved":         "Aprobado",
		"rejected":         "Rechazado",
		"support":          "Soporte",
		"inquiry":          "Consulta",
		"return":           "Devolución",
		"review":           "Revisión",
		"open":             "Abierta",
		"resolved":         "Resuelta",
		"closed":           "Cerrada",
		"admin":            "Administrador",
		"technician":       "Técnico",

		// request errors
		"invalid_body":      "Solicitud inválida",
		"file_required":     "Seleccione un archivo",
		"validation_failed": "Revise los campos marcados",
		"internal_error":    "Error interno",
		"unauthorized":      "Debe iniciar sesión",

		// pages
		"nav.contacts":          "Contactos",
		"companies":             "Empresas",
		"categories":            "Categorías",
		"assets":                "Activos",
		"kits":                  "Kits",
		"maintenance":           "Mantenimiento",
		"installations":         "Instalaciones",
		"requests":              "Solicitudes",
		"documents":             "Documentos",
		"contact":               "Contacto",
		"contacts":              "Contactos",
		"contact_name":          "Persona de contacto",
		"position":              "Cargo",
		"users":                 "Usuarios",
		"logo":                  "Logo",
		"attachments":           "Adjuntos",
		"upload":                "Subir",
		"view":                  "Ver",
		"add":                   "Agregar",
		"details":               "Detalle",
		"totals":                "Totales",
		"preview":               "Vista previa",
		"asset":                 "Activo",
		"kit":                   "Kit",
		"image":                 "Imagen",
		"notes":                 "Notas",
		"location":              "Ubicación",
		"new_category":          "Nueva categoría",
		"certification_status":  "Estado de certificación",
		"certification_due":     "Vence certificación",
		"maintenance_status":    "Estado de mantenimiento",
		"manufacturer":          "Fabricante",
		"scheduled_activities":  "Actividades programadas",
		"activities_hint":       "Una por línea; [x] marca las realizadas",
		"required_parts":        "Repuestos requeridos",
		"parts_hint":            "nombre | cantidad | notas",
		"request":               "Solicitud",
		"requested_at":          "Fecha de solicitud",
		"due_at":                "Fecha límite",
		"notify":                "Notificar al cliente",
		"comments":              "Comentarios",
		"document":              "Documento",
		"document_number":       "Número de documento",
		"document_type":         "Tipo de documento",
		"auto_number":           "Automático",
		"observations":          "Observaciones",
		"period":                "Periodo",
		"work_location":         "Lugar de trabajo",
		"technical_notes":       "Notas técnicas",
		"maintenance_lines":     "Mantenimientos",
		"installation_lines":    "Instalaciones",
		"tax_rate_percent":      "IVA (%)",
		"issuer":                "Empresa emisora",
		"issuer_missing":        "Configure la empresa emisora",
		"website":               "Sitio web",
		"bank_details":          "Datos bancarios",
		"footer_note":           "Nota al pie",
		"active_companies":      "Empresas activas",
		"pending_maintenance":   "Mantenimientos pendientes",
		"pending_installations": "Instalaciones pendientes",
		"open_requests":         "Solicitudes abiertas",
	},
	EN: {
		"required":         "Required",
		"invalid_choice":   "Invalid choice",
		"invalid_nit":      "Invalid tax id (9 to 10 digits)",
		"invalid_email":    "Invalid email",
		"invalid_phone":    "Invalid mobile number (+57 3XXXXXXXXX)",
		"invalid_price":    "Must be a non-negative number",
		"end_before_start": "End date is before start date",
		"must_be_positive": "Must be greater than zero",
		"out_of_range":     "Out of range",

		"duplicate":           "A record with this value already exists. Use a different number.",
		"invalid_reference":   "Invalid reference",
		"not_found":           "Record not found",
		"store_error":         "Could not save the data",
		"attachment_failed":   "File upload or removal failed",
		"invalid_credentials": "Wrong email or password",

		"saved":        "Saved",
		"deleted":      "Deleted",
		"totals_saved": "Totals saved",

		"nav.dashboard":     "Home",
		"nav.companies":     "Companies",
		"nav.categories":    "Categories",
		"nav.assets":        "Assets",
		"nav.kits":          "Kits",
		"nav.maintenance":   "Maintenance",
		"nav.installations": "Installations",
		"nav.requests":      "Requests",
		"nav.documents":     "Documents",
		"nav.issuer":        "Issuer profile",
		"nav.logout":        "Log out",

		"new":         "New",
		"edit":        "Edit",
		"delete":      "Delete",
		"save":        "Save",
		"cancel":      "Cancel",
		"search":      "Search",
		"export_csv":  "Export CSV",
		"export_xlsx": "Export Excel",
		"no_records":  "No records",
		"login":       "Log in",
		"email":       "Email",
		"password":    "Password",
		"name":        "Name",
		"status":      "Status",
		"kind":        "Type",
		"priority":    "Priority",
		"created_at":  "Created",

		"tax_id":       "Tax ID",
		"legal_name":   "Legal name",
		"trade_name":   "Trade name",
		"phone":        "Phone",
		"city":         "City",
		"address":      "Address",
		"brand":        "Brand",
		"model":        "Model",
		"serial":       "Serial",
		"category":     "Category",
		"availability": "Availability",
		"stock":        "Stock",
		"components":   "Components",
		"title":        "Title",
		"client":       "Client",
		"start_date":   "Start date",
		"end_date":     "End date",
		"cost":         "Cost",
		"progress":     "Progress",
		"company":      "Company",
		"number":       "Number",
		"issue_date":   "Issue date",
		"total":        "Total",
		"days":         "Days",
		"description":  "Description",

		"subtotal":     "Subtotal",
		"discount":     "Discount",
		"tax_rate":     "VAT (%)",
		"tax_amount":   "VAT",
		"other_taxes":  "Other taxes",
		"assets_lines": "Assets",
		"quantity":     "Quantity",
		"unit_price":   "Unit price",
		"line_total":   "Line total",
		"download_pdf": "Download PDF",

		"active":           "Active",
		"inactive":         "Inactive",
		"equipment":        "Equipment",
		"tool":             "Tool",
		"equipment_kit":    "Equipment kit",
		"tool_case":        "Tool case",
		"available":        "Available",
		"rented":           "Rented",
		"in_maintenance":   "In maintenance",
		"reserved":         "Reserved",
		"current":          "Current",
		"in_certification": "In certification",
		"expiring_soon":    "Expiring soon",
		"expired":          "Expired",
		"n_a":              "N/A",
		"preventive":       "Preventive",
		"corrective":       "Corrective",
		"predictive":       "Predictive",
		"emergency":        "Emergency",
		"low":              "Low",
		"medium":           "Medium",
		"high":             "High",
		"critical":         "Critical",
		"installation":     "Installation",
		"dismantling":      "Dismantling",
		"relocation":       "Relocation",
		"expansion":        "Expansion",
		"pending":          "Pending",
		"in_progress":      "In progress",
		"completed":        "Completed",
		"cancelled":        "Cancelled",
		"purchase_order":   "Purchase order",
		"quote":            "Quote",
		"invoice":          "Invoice",
		"draft":            "Draft",
		"sent":             "Sent",
		"approved":         "Approved",
		"rejected":         "Rejected",
		"support":          "Support",
		"inquiry":          "Inquiry",
		"return":           "Return",
		"review":           "Review",
		"open":             "Open",
		"resolved":         "Resolved",
		"closed":           "Closed",
		"admin":            "Administrator",
		"technician":       "Technician",

		"invalid_body":      "Invalid request",
		"file_required":     "Choose a file",
		"validation_failed": "Check the highlighted fields",
		"internal_error":    "Internal error",
		"unauthorized":      "Please log in",

		"nav.contacts":          "Contacts",
		"companies":             "Companies",
		"categories":            "Categories",
		"assets":                "Assets",
		"kits":                  "Kits",
		"maintenance":           "Maintenance",
		"installations":         "Installations",
		"requests":              "Requests",
		"documents":             "Documents",
		"contact":               "Contact",
		"contacts":              "Contacts",
		"contact_name":          "Contact person",
		"position":              "Position",
		"users":                 "Users",
		"logo":                  "Logo",
		"attachments":           "Attachments",
		"upload":                "Upload",
		"view":                  "View",
		"add":                   "Add",
		"details":               "Details",
		"totals":                "Totals",
		"preview":               "Preview",
		"asset":                 "Asset",
		"kit":                   "Kit",
		"image":                 "Image",
		"notes":                 "Notes",
		"location":              "Location",
		"new_category":          "New category",
		"certification_status":  "Certification status",
		"certification_due":     "Certification due",
		"maintenance_status":    "Maintenance status",
		"manufacturer":          "Manufacturer",
		"scheduled_activities":  "Scheduled activities",
		"activities_hint":       "One per line; [x] marks done ones",
		"required_parts":        "Required parts",
		"parts_hint":            "name | quantity | notes",
		"request":               "Request",
		"requested_at":          "Requested on",
		"due_at":                "Due date",
		"notify":                "Notify the client",
		"comments":              "Comments",
		"document":              "Document",
		"document_number":       "Document number",
		"document_type":         "Document type",
		"auto_number":           "Automatic",
		"observations":          "Observations",
		"period":                "Period",
		"work_location":         "Work location",
		"technical_notes":       "Technical notes",
		"maintenance_lines":     "Maintenance",
		"installation_lines":    "Installations",
		"tax_rate_percent":      "VAT (%)",
		"issuer":                "Issuer profile",
		"issuer_missing":        "Set up the issuer profile",
		"website":               "Website",
		"bank_details":          "Bank details",
		"footer_note":           "Footer note",
		"active_companies":      "Active companies",
		"pending_maintenance":   "Pending maintenance",
		"pending_installations": "Pending installations",
		"open_requests":         "Open requests",
	},
}
