package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digimosa/pii-scanner/internal/models"
)

func TestBenin_Vectors(t *testing.T) {
	d := newTestDetector(Benin())

	tests := []struct {
		name    string
		typ     models.FindingType
		content string
		want    int
	}{
		{"phone international", models.TypeTelephone, "+229 97 12 34 56", 1},
		{"phone 00229", models.TypeTelephone, "0022997123456", 1},
		{"phone 66", models.TypeTelephone, "0022966789012", 1},
		{"phone 40", models.TypeTelephone, "0022940000000", 1},
		{"phone unknown prefix", models.TypeTelephone, "+229 81 12 34 56", 0},
		{"phone local only", models.TypeTelephone, "97 12 34 56", 0},

		{"iban", models.TypeIBAN, "BJ66BJ061010101234567890123456", 1},
		{"iban alnum", models.TypeIBAN, "BJ12ABCD12345678901234567890", 1},

		{"cni 8 digits", models.TypeCNIBenin, "CNI: AB12345678", 1},
		{"cni 10 digits", models.TypeCNIBenin, "Carte: CD1234567890", 1},
		{"cni 6 digits", models.TypeCNIBenin, "XY123456", 1},
		{"cni single letter", models.TypeCNIBenin, "A1234567", 0},
		{"cni digits only", models.TypeCNIBenin, "12345678", 0},
		{"cni letters only", models.TypeCNIBenin, "ABCDEFGH", 0},
		{"cni too short", models.TypeCNIBenin, "AB12345", 0},

		{"passport", models.TypePasseportBenin, "Passeport: BJ1234567", 1},
		{"passport short", models.TypePasseportBenin, "BJ123456", 0},
		{"passport long", models.TypePasseportBenin, "BJ12345678", 0},
		{"passport foreign", models.TypePasseportBenin, "FR1234567", 0},

		{"mtn 96", models.TypeMobileMoneyMTN, "MTN: 96 12 34 56", 1},
		{"mtn 97", models.TypeMobileMoneyMTN, "97 12 34 56", 1},
		{"mtn 61", models.TypeMobileMoneyMTN, "61 23 45 67", 1},
		{"moov 98", models.TypeMobileMoneyMoov, "Moov Money: 98 12 34 56", 1},
		{"moov 95", models.TypeMobileMoneyMoov, "95 12 34 56", 1},
		{"moov 60", models.TypeMobileMoneyMoov, "60 12 34 56", 1},
		{"moov not mtn", models.TypeMobileMoneyMTN, "98 12 34 56", 0},

		{"cnss", models.TypeCNSS, "CNSS: 54321098765", 1},
		{"cnss other", models.TypeCNSS, "87654321098", 1},
		{"cnss repeated ones", models.TypeCNSS, "11111111111", 0},
		{"cnss zeros", models.TypeCNSS, "00000000000", 0},
		{"cnss sequence", models.TypeCNSS, "12345678901", 0},
		{"cnss sample", models.TypeCNSS, "00001760268", 0},
		{"cnss int max", models.TypeCNSS, "21474836470", 0},

		{"ramu dash", models.TypeRAMU, "RAMU-12345678", 1},
		{"ramu space", models.TypeRAMU, "RAMU 1234567890", 1},
		{"rccm", models.TypeRCCM, "RCCM: RB/COT/2024/A/12345", 1},
		{"ine dash", models.TypeINE, "INE-12345678", 1},
		{"ine space", models.TypeINE, "INE 123456789012", 1},
		{"matricule F", models.TypeMatricule, "Matricule: F123456", 1},
		{"matricule M", models.TypeMatricule, "Agent M1234567890", 1},
		{"plate full", models.TypePlaque, "Véhicule: AB 1234 CD", 1},
		{"plate short", models.TypePlaque, "Plaque: 1234 AB", 1},
		{"plate other", models.TypePlaque, "XY 9999 ZZ", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.content, testPath, models.FileMeta{})
			assert.Equal(t, tt.want, countType(got, tt.typ))
		})
	}
}

func TestBenin_MixedDocument(t *testing.T) {
	d := newTestDetector(Benin())
	content := "Nom: Jean Dupont, Email: jean@example.com, Tel: +229 97 12 34 56, Né le 15/03/1985, CNI: AB12345678"

	got := d.Detect(content, testPath, models.FileMeta{})

	types := make(map[string]bool)
	for _, f := range got {
		types[f.PiiType] = true
	}
	for _, want := range []models.FindingType{
		models.TypeEmail,
		models.TypeTelephone,
		models.TypeDateNaissance,
		models.TypeCNIBenin,
	} {
		assert.True(t, types[string(want)], "missing %s", want)
	}
}

func TestBenin_OnlyProfileTypes(t *testing.T) {
	set := Benin()
	d := newTestDetector(set)

	got := d.Detect("FR7630006000011234567890189 ghp_"+"abcdefghijklmnopqrstuvwxyz0123456789", testPath, models.FileMeta{})
	for _, f := range got {
		assert.True(t, set.Has(models.FindingType(f.PiiType)), f.PiiType)
	}
	assert.False(t, set.Has(models.TypeIBANFR))
	assert.False(t, set.Has(models.TypeTokenGitHub))
}
