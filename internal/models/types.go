package models

import "time"

// Finding represents a single PII match found in a file.
// Match holds the raw sensitive value; callers must treat it as sensitive.
type Finding struct {
	FilePath         string     `json:"file_path"`
	PiiType          string     `json:"pii_type"`
	Match            string     `json:"match"`
	LastAccessedDate *time.Time `json:"last_accessed_date,omitempty"`

	// Exposure fields are filled from a PermissionInfo when one is available
	ExposureLevel        string `json:"exposure_level,omitempty"`
	AccessibleToEveryone *bool  `json:"accessible_to_everyone,omitempty"`
	IsNetworkShare       *bool  `json:"is_network_share,omitempty"`
	UserGroupCount       *int   `json:"user_group_count,omitempty"`
}

// PermissionInfo describes how broadly a file is accessible.
type PermissionInfo struct {
	ExposureLevel        string `json:"exposure_level"`
	AccessibleToEveryone bool   `json:"accessible_to_everyone"`
	IsNetworkShare       bool   `json:"is_network_share"`
	UserGroupCount       int    `json:"user_group_count"`
}

// FileMeta carries the optional per-file metadata passed to the detector.
type FileMeta struct {
	LastAccessed *time.Time
	Permissions  *PermissionInfo
}

// Apply copies the optional metadata onto a finding.
func (m FileMeta) Apply(f *Finding) {
	f.LastAccessedDate = m.LastAccessed
	if m.Permissions == nil {
		return
	}
	p := *m.Permissions
	f.ExposureLevel = p.ExposureLevel
	f.AccessibleToEveryone = &p.AccessibleToEveryone
	f.IsNetworkShare = &p.IsNetworkShare
	f.UserGroupCount = &p.UserGroupCount
}

// Job represents a file to be scanned by a worker
type Job struct {
	FilePath string
}

type FindingType string

const (
	TypeEmail          FindingType = "Email"
	TypeTelephoneFR    FindingType = "TelephoneFR"
	TypeTelephoneBJ    FindingType = "TelephoneBJ"
	TypeDateNaissance  FindingType = "DateNaissance"
	TypeNumeroSecu     FindingType = "NumeroSecu"
	TypeNumeroFiscalFR FindingType = "NumeroFiscalFR"
	TypeIFU            FindingType = "IFU"
	TypeIBANFR         FindingType = "IBAN_FR"
	TypeIBANBJ         FindingType = "IBAN_BJ"
	TypeCarteBancaire  FindingType = "CarteBancaire"
	TypeAdresseIP      FindingType = "AdresseIP"
	TypePasseport      FindingType = "Passeport"
	TypeMotDePasse     FindingType = "MotDePasse"
	TypeCleAPIAWS      FindingType = "CleAPI_AWS"
	TypeCleAPIGoogle   FindingType = "CleAPI_Google"
	TypeTokenGitHub    FindingType = "Token_GitHub"
	TypeCleAPIStripe   FindingType = "CleAPI_Stripe"
	TypeTokenJWT       FindingType = "Token_JWT"

	// Benin desktop profile
	TypeTelephone       FindingType = "Telephone"
	TypeIBAN            FindingType = "IBAN"
	TypeCNIBenin        FindingType = "CNI_Benin"
	TypePasseportBenin  FindingType = "Passeport_Benin"
	TypeMobileMoneyMTN  FindingType = "MobileMoney_MTN"
	TypeMobileMoneyMoov FindingType = "MobileMoney_Moov"
	TypeCNSS            FindingType = "CNSS"
	TypeRAMU            FindingType = "RAMU"
	TypeRCCM            FindingType = "RCCM"
	TypeINE             FindingType = "INE"
	TypeMatricule       FindingType = "Matricule_Fonctionnaire"
	TypePlaque          FindingType = "Plaque_Immatriculation"
)

// Match is a raw detector hit before it is bound to a file.
type Match struct {
	Type  FindingType `json:"type"`
	Value string      `json:"value"`
}
