// Package exporter writes the final vegetation export artifact: one
// tab-separated text record per generated point, preceded by the fixed
// column header the downstream deployment tooling expects. Most columns are
// legacy and left blank; only the coordinates, two constant codes and the
// type value are filled.
package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vegepoly/vegepoly/vegmodel"
)

const header = "X\tY\tNom\tNUMERO_DEPARTEMENT\tCODE_BASS\tCODE_INSEE\tIDIndexDATA\tCLEGCES\tNOM_PLAN_DEPLOIEMENT\tCODE_REGION\tCODE_INSEE_SGA\tchamp_graphe\tlongueur_specifique\tvitesse_specifique\tNUMERO_INSEE\tGROUPEMENT\tNOM_ZONE_OP\tSECTEUR_SINISTRE\tOBSERVATIONS\tDFCI_ID_MOT\tAUTRE_APPELATION\tAUTRE_APPELATION_1\tAUTRE_APPELATION_2\tAUTRE_APPELATION_3\tTYPE_AUTRE_APPELATION\tTYPE_AUTRE_APPELATION_1\tTYPE_AUTRE_APPELATION_2\tTYPE_AUTRE_APPELATION_3\tADRESSE\tLongueur specifique\tVitesse specifique\tIdZoneGeo\tz\ttype\tID\n"

// recordTail fills the legacy columns between the coordinates and the type
// value. The two constants are fixed deployment codes.
const recordTail = "\t\t\t\t\t\t\t\t\t20\t\t\t\t20096\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t0\t%d\t\n"

// DefaultFilename returns the timestamped export name, e.g.
// "Export 29-08-2026 14h03-27.txt".
func DefaultFilename(now time.Time) string {
	return "Export " + now.Format("02-01-2006 15h04-05") + ".txt"
}

// Write streams the header and all records to w in one buffered pass.
func Write(w io.Writer, points []vegmodel.PointRecord) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(bw, "       %v\t       %v"+recordTail, p.X, p.Y, p.TypeValue); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Save writes the export to a file. A ".zst" suffix switches on zstd
// compression, same convention as the generated cache files elsewhere in
// the toolchain.
func Save(path string, points []vegmodel.PointRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(file)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		defer enc.Close()
		w = enc
	}

	if err := Write(w, points); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
