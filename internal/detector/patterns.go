package detector

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/digimosa/pii-scanner/internal/models"
)

// Profile names accepted by ProfileByName.
const (
	ProfileStandard = "standard"
	ProfileBenin    = "benin"
)

// Validator reports whether a raw regex hit is a real occurrence.
// Validators are total functions over the matched string.
type Validator func(value string, now time.Time) bool

type pattern struct {
	typ      models.FindingType
	expr     *regexp.Regexp
	validate Validator
}

// PatternSet is an ordered, immutable table of named expressions and
// their validators. Build one at startup and share it.
type PatternSet struct {
	name     string
	patterns []pattern
}

// Name returns the profile name.
func (s *PatternSet) Name() string {
	return s.name
}

// Has reports whether the set contains a pattern of the given type.
func (s *PatternSet) Has(t models.FindingType) bool {
	for _, p := range s.patterns {
		if p.typ == t {
			return true
		}
	}
	return false
}

type patternDef struct {
	typ      models.FindingType
	expr     string
	validate Validator
}

// newPatternSet compiles defs. A malformed expression panics: the tables
// are fixed at build time, so this is a startup configuration error.
func newPatternSet(name string, defs []patternDef) *PatternSet {
	set := &PatternSet{name: name, patterns: make([]pattern, 0, len(defs))}
	for _, d := range defs {
		set.patterns = append(set.patterns, pattern{
			typ:      d.typ,
			expr:     regexp.MustCompile(d.expr),
			validate: d.validate,
		})
	}
	return set
}

// Shared shape expressions.
const (
	emailExpr        = `\b[a-zA-Z][a-zA-Z0-9._%+-]*@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`
	birthDateExpr    = `\b(?:0[1-9]|[12][0-9]|3[01])/(?:0[1-9]|1[0-2])/(?:19|20)\d{2}\b`
	cardExpr         = `\b(?:\d{4}[ -]?){3}\d{4}\b`
	ifuExpr          = `\b[0-3]\d{12}\b`
	ipExpr           = `\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`
	secretExpr       = `(?i)\b(?:password|pwd|passwd|secret|api[_-]?key|access[_-]?token|auth[_-]?token|private[_-]?key)\s*[:=]\s*[^\s;,"')\]]{4,}\b`
	awsKeyExpr       = `\bAKIA[0-9A-Z]{16}\b`
	jwtExpr          = `\beyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_.+/=-]*\b`
	mobileSuffixExpr = `(?:[\s.-]?\d{2}){3}\b`
)

// Standard returns the French/Beninese pattern table.
func Standard() *PatternSet {
	return newPatternSet(ProfileStandard, []patternDef{
		{models.TypeEmail, emailExpr, validEmail},
		{models.TypeTelephoneFR, `(?:\+33|\b0)[1-9](?:[\s.-]?\d{2}){4}\b`, nil},
		{models.TypeTelephoneBJ, `(?:\+229|\b00229)[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}\b`, nil},
		{models.TypeDateNaissance, birthDateExpr, validBirthDate},
		{models.TypeNumeroSecu, `\b[1-478]\s?\d{2}\s?\d{2}\s?\d{2}\s?\d{3}\s?\d{3}\s?\d{2}\b`, nil},
		{models.TypeNumeroFiscalFR, `\b\d{13}\b`, validTaxNumber},
		{models.TypeIFU, ifuExpr, validTaxNumber},
		{models.TypeIBANFR, `\bFR\d{2}(?: ?[A-Z0-9]{4}){5} ?[A-Z0-9]{3}\b`, validIbanFR},
		{models.TypeIBANBJ, `\bBJ ?\d{2} ?[A-Z0-9 ]{24,28}\b`, nil},
		{models.TypeCarteBancaire, cardExpr, validCard},
		{models.TypeAdresseIP, ipExpr, nil},
		{models.TypePasseport, `\b[A-Z]{2}[0-9]{6,9}\b`, validPassport},
		{models.TypeMotDePasse, secretExpr, validSecret},
		{models.TypeCleAPIAWS, awsKeyExpr, validAwsKey},
		{models.TypeCleAPIGoogle, `\bAIza[0-9A-Za-z_-]{35}\b`, nil},
		{models.TypeTokenGitHub, `\bghp_[0-9a-zA-Z]{36}\b`, nil},
		{models.TypeCleAPIStripe, `\bsk_live_[0-9a-zA-Z]{24,}\b`, nil},
		{models.TypeTokenJWT, jwtExpr, nil},
	})
}

// Benin returns the desktop profile focused on Beninese identity,
// benefit and mobile money identifiers.
func Benin() *PatternSet {
	return newPatternSet(ProfileBenin, []patternDef{
		{models.TypeEmail, emailExpr, validEmail},
		{models.TypeTelephone, `(?:\+229|\b00229)[\s.-]?(?:4[0-9]|5[0-9]|6[0-79]|9[0-79])[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}\b`, nil},
		{models.TypeDateNaissance, birthDateExpr, validBirthDate},
		{models.TypeCarteBancaire, cardExpr, validCard},
		{models.TypeIFU, ifuExpr, validTaxNumber},
		{models.TypeIBAN, `\bBJ\d{2}[A-Z0-9]{24,28}\b`, nil},
		{models.TypeCNIBenin, `\b[A-Z]{2}\d{6,10}\b`, nil},
		{models.TypePasseportBenin, `\bBJ\d{7}\b`, nil},
		{models.TypeMobileMoneyMTN, `\b(?:5[1-4]|6[1267]|9[67])` + mobileSuffixExpr, nil},
		{models.TypeMobileMoneyMoov, `\b(?:5[58]|6[03-589]|9[4589])` + mobileSuffixExpr, nil},
		{models.TypeCNSS, `\b\d{11}\b`, validCNSS},
		{models.TypeRAMU, `\bRAMU[\s-]?\d{8,10}\b`, nil},
		{models.TypeRCCM, `\bR[A-Z]/[A-Z]{3}/\d{4}/[A-Z]/\d{1,6}\b`, nil},
		{models.TypeINE, `\bINE[\s-]?\d{8,12}\b`, nil},
		{models.TypeMatricule, `\b[FM]\d{6,10}\b`, nil},
		{models.TypePlaque, `\b(?:[A-Z]{2} ?\d{4} ?[A-Z]{2}|\d{4} ?[A-Z]{2})\b`, nil},
		{models.TypeAdresseIP, ipExpr, nil},
		{models.TypeMotDePasse, secretExpr, validSecret},
		{models.TypeCleAPIAWS, awsKeyExpr, validAwsKey},
		{models.TypeTokenJWT, jwtExpr, nil},
	})
}

// ProfileByName resolves a configured profile name.
func ProfileByName(name string) (*PatternSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileStandard:
		return Standard(), nil
	case ProfileBenin:
		return Benin(), nil
	default:
		return nil, fmt.Errorf("unknown detection profile: %q", name)
	}
}
