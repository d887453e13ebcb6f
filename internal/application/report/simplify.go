package report

import (
	"fmt"
	"regexp"
	"strings"
)

// Display-name normalization for the monitoring screen. Procurement item
// names arrive as catalog strings like "[DSTB-CP(P)] 3 FDC H50 R75 Z150";
// the report shows them as "3-Drug Combo H 50 mg R 75 mg Z 150 mg".
var (
	bracketedCode   = regexp.MustCompile(`\[[^\]]*\]`)
	leadingFDC      = regexp.MustCompile(`(?i)^(\d+)\s*FDC\b`)
	dosageToken     = regexp.MustCompile(`(?i)\b([HRZE])\s*([0-9]+(?:\.[0-9]+)?)\b`)
	bareNumber      = regexp.MustCompile(`\b([0-9]+(?:\.[0-9]+)?)(-[A-Za-z]|\s*mg\b)?`)
	commaSpacing    = regexp.MustCompile(`\s*,\s*`)
	ampSpacing      = regexp.MustCompile(`\s*&\s*`)
	letterParens    = regexp.MustCompile(`\(\s*[A-Za-z]\s*\)`)
	multiSpace      = regexp.MustCompile(`\s+`)
	knownDrugNames  = map[*regexp.Regexp]string{
		regexp.MustCompile(`(?i)\bclofazimine\b`): "Clofazimine",
		regexp.MustCompile(`(?i)\bcycloserine\b`): "Cycloserine",
		regexp.MustCompile(`(?i)\bethambutol\b`):  "Ethambutol",
	}
)

// SimplifyMedicineName rewrites a raw catalog item name into display form:
// bracketed codes stripped, "N FDC" spelled out, dosage tokens split and
// suffixed with mg, punctuation spacing normalized.
func SimplifyMedicineName(raw string) string {
	name := strings.TrimSpace(bracketedCode.ReplaceAllString(raw, ""))
	if name == "" {
		return ""
	}

	name = leadingFDC.ReplaceAllStringFunc(name, func(m string) string {
		n := leadingFDC.FindStringSubmatch(m)[1]
		return fmt.Sprintf("%s-Drug Combo", n)
	})

	name = dosageToken.ReplaceAllStringFunc(name, func(m string) string {
		parts := dosageToken.FindStringSubmatch(m)
		return strings.ToUpper(parts[1]) + " " + parts[2]
	})

	// every standalone number reads as a dose in mg; idempotent when the
	// unit is already present, and hyphenated tokens like "2-Drug" stay intact
	name = bareNumber.ReplaceAllStringFunc(name, func(m string) string {
		parts := bareNumber.FindStringSubmatch(m)
		if strings.HasPrefix(parts[2], "-") {
			return m
		}
		return parts[1] + " mg"
	})

	name = commaSpacing.ReplaceAllString(name, ", ")
	name = ampSpacing.ReplaceAllString(name, " & ")
	name = letterParens.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")

	for re, canonical := range knownDrugNames {
		name = re.ReplaceAllString(name, canonical)
	}

	return strings.TrimSpace(name)
}
