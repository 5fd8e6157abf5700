package models

// IssuerProfile is the rental company itself, printed as the issuer on documents.
// At most one row is expected.
type IssuerProfile struct {
	Base
	LegalName   string `gorm:"size:255;not null" json:"legal_name"`
	TaxID       string `gorm:"size:20" json:"tax_id,omitempty"`
	Address     string `gorm:"size:500" json:"address,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	Phone       string `gorm:"size:50" json:"phone,omitempty"`
	Email       string `gorm:"size:255" json:"email,omitempty"`
	Website     string `gorm:"size:255" json:"website,omitempty"`
	LogoURL     string `gorm:"size:1000" json:"logo_url,omitempty"`
	BankDetails string `gorm:"type:text" json:"bank_details,omitempty"`
	FooterNote  string `gorm:"type:text" json:"footer_note,omitempty"`
}
