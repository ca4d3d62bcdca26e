package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Ductolator/internal/calc/demand"
	"Ductolator/internal/calc/fittings"
	"Ductolator/internal/codes"
)

const (
	MaterialsFile = "materials"
	FittingsFile  = "fittings"
	TablesFile    = "plumbing-code-tables.json"
)

// Report describes one folder load.
type Report struct {
	Dir       string   `json:"dir"`
	Applied   bool     `json:"applied"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	Skipped   int      `json:"skipped"`
	Materials int      `json:"materials"`
	Fittings  int      `json:"fittings"`
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) skip(format string, args ...any) {
	r.Skipped++
	r.warn(format, args...)
}

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// findFile looks for name.json, name.csv, then the template variants.
func findFile(dir, name string) (path string, template bool, err error) {
	for _, tmpl := range []bool{false, true} {
		for _, ext := range []string{".json", ".csv"} {
			base := name
			if tmpl {
				base += ".template"
			}
			p := filepath.Join(dir, base+ext)
			if _, err := os.Stat(p); err == nil {
				return p, tmpl, nil
			}
		}
	}
	return "", false, fmt.Errorf("%s.json or %s.csv not found in %s", name, name, dir)
}

// Load builds a snapshot from the built-in catalog merged with the files in
// dir. It returns nil when the load is aborted; the report says why.
func Load(dir string) (*Snapshot, Report) {
	rep := Report{Dir: dir}
	info, err := os.Stat(dir)
	if err != nil {
		rep.fail("catalog folder: %v", err)
		return nil, rep
	}
	if !info.IsDir() {
		rep.fail("catalog folder: %s is not a directory", dir)
		return nil, rep
	}

	matPath, matTmpl, matErr := findFile(dir, MaterialsFile)
	fitPath, fitTmpl, fitErr := findFile(dir, FittingsFile)
	if matErr != nil {
		rep.fail("%v", matErr)
	}
	if fitErr != nil {
		rep.fail("%v", fitErr)
	}
	if len(rep.Errors) > 0 {
		return nil, rep
	}
	if matTmpl {
		rep.warn("using template %s", filepath.Base(matPath))
	}
	if fitTmpl {
		rep.warn("using template %s", filepath.Base(fitPath))
	}

	mats, err := readMaterials(matPath, &rep)
	if err != nil {
		rep.fail("%s: %v", filepath.Base(matPath), err)
	} else if len(mats) == 0 {
		rep.fail("%s: no usable material records", filepath.Base(matPath))
	}
	fits, err := readFittings(fitPath, &rep)
	if err != nil {
		rep.fail("%s: %v", filepath.Base(fitPath), err)
	} else if len(fits) == 0 {
		rep.fail("%s: no usable fitting records", filepath.Base(fitPath))
	}
	if len(rep.Errors) > 0 {
		return nil, rep
	}

	base := Builtin()
	snap := &Snapshot{
		Fittings: mergeFittings(base.Fittings, fits),
		Tables:   base.Tables.Clone(),
		Source:   dir,
	}
	snap.setMaterials(mergeMaterials(base.Materials, mats))

	profiles := codes.Builtin()
	tablesPath := filepath.Join(dir, TablesFile)
	if data, err := os.ReadFile(tablesPath); err == nil {
		profiles = append(profiles, readTables(data, snap.Tables, &rep)...)
	} else if !errors.Is(err, os.ErrNotExist) {
		rep.warn("%s: %v", TablesFile, err)
	}
	snap.Profiles = codes.NewRegistry(profiles...)
	rep.Warnings = append(rep.Warnings, snap.Profiles.Validate(snap.tableHas)...)

	snap.Warnings = rep.Warnings
	rep.Materials = len(snap.Materials)
	rep.Fittings = len(snap.Fittings)
	rep.Applied = true
	return snap, rep
}

func mergeMaterials(base, extra []Material) []Material {
	out := append([]Material(nil), base...)
	pos := map[string]int{}
	for i, m := range out {
		pos[strings.ToLower(m.Key)] = i
	}
	for _, m := range extra {
		k := strings.ToLower(m.Key)
		if i, ok := pos[k]; ok {
			out[i] = m
			continue
		}
		pos[k] = len(out)
		out = append(out, m)
	}
	return out
}

func mergeFittings(base, extra []fittings.Profile) []fittings.Profile {
	out := append([]fittings.Profile(nil), base...)
	key := func(f fittings.Profile) string {
		return strings.ToLower(f.Category) + "\x00" + strings.ToLower(f.Name)
	}
	pos := map[string]int{}
	for i, f := range out {
		pos[key(f)] = i
	}
	for _, f := range extra {
		if i, ok := pos[key(f)]; ok {
			out[i] = f
			continue
		}
		pos[key(f)] = len(out)
		out = append(out, f)
	}
	return out
}

// eachRecord decodes every raw record into T and hands it to add. A record
// that fails to decode or is rejected by add is skipped with a warning.
func eachRecord[T any](raws []json.RawMessage, section string, rep *Report, add func(T) error) {
	for i, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			rep.skip("%s record %d: %v", section, i, err)
			continue
		}
		if err := add(v); err != nil {
			rep.skip("%s record %d: %v", section, i, err)
		}
	}
}

func readMaterials(path string, rep *Report) ([]Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".csv") {
		return materialsCSV(f, filepath.Base(path), rep)
	}
	var raws []json.RawMessage
	if err := json.NewDecoder(f).Decode(&raws); err != nil {
		return nil, err
	}
	var out []Material
	eachRecord(raws, filepath.Base(path), rep, func(m Material) error {
		if err := m.Validate(); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, nil
}

func readFittings(path string, rep *Report) ([]fittings.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".csv") {
		return fittingsCSV(f, filepath.Base(path), rep)
	}
	var raws []json.RawMessage
	if err := json.NewDecoder(f).Decode(&raws); err != nil {
		return nil, err
	}
	var out []fittings.Profile
	eachRecord(raws, filepath.Base(path), rep, func(p fittings.Profile) error {
		if err := validFitting(p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, nil
}

func validFitting(p fittings.Profile) error {
	if p.Name == "" {
		return errors.New("fitting name is empty")
	}
	if p.K < 0 || p.EquivalentLengthFt < 0 {
		return fmt.Errorf("fitting %q has negative loss values", p.Name)
	}
	return nil
}

// csvRows reads a headed CSV file into column-name-keyed rows. Header names
// match case-insensitively.
func csvRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	var out []map[string]string
	for _, rec := range records[1:] {
		row := map[string]string{}
		blank := true
		for i, v := range rec {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(v)
				if row[header[i]] != "" {
					blank = false
				}
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out, nil
}

// num parses an optional numeric column. Empty is zero.
func num(row map[string]string, col string) (float64, error) {
	v := row[strings.ToLower(col)]
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", col, v)
	}
	return f, nil
}

func nums(row map[string]string, cols ...string) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, err := num(row, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// materialsCSV reads one row per nominal size; rows sharing a key build one
// material whose properties come from its first row.
func materialsCSV(r io.Reader, name string, rep *Report) ([]Material, error) {
	rows, err := csvRows(r)
	if err != nil {
		return nil, err
	}
	var out []Material
	pos := map[string]int{}
	for i, row := range rows {
		line := i + 2
		key := row["key"]
		if key == "" {
			rep.skip("%s line %d: key is empty", name, line)
			continue
		}
		v, err := nums(row, "cNew", "cAged", "roughnessFt", "waveSpeedFps", "insideDiameterIn")
		if err != nil {
			rep.skip("%s line %d: %v", name, line, err)
			continue
		}
		idx, seen := pos[strings.ToLower(key)]
		if !seen {
			m := Material{Key: key, DisplayName: row["displayname"], CNew: v[0], CAged: v[1], RoughnessFt: v[2], WaveSpeedFps: v[3]}
			if err := m.Validate(); err != nil {
				rep.skip("%s line %d: %v", name, line, err)
				continue
			}
			idx = len(out)
			pos[strings.ToLower(key)] = idx
			out = append(out, m)
		}
		if nominal := row["nominal"]; nominal != "" {
			if v[4] <= 0 {
				rep.skip("%s line %d: size %q has no inside diameter", name, line, nominal)
				continue
			}
			out[idx].Sizes = append(out[idx].Sizes, NominalSize{Nominal: nominal, InsideIn: v[4]})
		}
	}
	return out, nil
}

func fittingsCSV(r io.Reader, name string, rep *Report) ([]fittings.Profile, error) {
	rows, err := csvRows(r)
	if err != nil {
		return nil, err
	}
	var out []fittings.Profile
	for i, row := range rows {
		v, err := nums(row, "k", "equivalentLengthFt")
		if err != nil {
			rep.skip("%s line %d: %v", name, i+2, err)
			continue
		}
		p := fittings.Profile{Category: row["category"], Name: row["name"], K: v[0], EquivalentLengthFt: v[1]}
		if err := validFitting(p); err != nil {
			rep.skip("%s line %d: %v", name, i+2, err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type tablesFile struct {
	FixtureDemandCurves  []json.RawMessage `json:"fixtureDemandCurves"`
	SanitaryDfuTables    []json.RawMessage `json:"sanitaryDfuTables"`
	SanitaryBranchTables []json.RawMessage `json:"sanitaryBranchTables"`
	VentTables           []json.RawMessage `json:"ventTables"`
	StormLeaderTables    []json.RawMessage `json:"stormLeaderTables"`
	GasMethods           []json.RawMessage `json:"gasMethods"`
	CodeProfiles         []json.RawMessage `json:"codeProfiles"`
}

type dfuRow struct {
	DiameterIn   float64 `json:"diameterIn"`
	SlopeFtPerFt float64 `json:"slopeFtPerFt"`
	MaxDfu       float64 `json:"maxDfu"`
	BaseMaxDfu   float64 `json:"baseMaxDfu"`
	MaxGpm       float64 `json:"maxGpm"`
}

func toRows(in []dfuRow, pick func(dfuRow) float64) []demand.Row {
	out := make([]demand.Row, len(in))
	for i, r := range in {
		out[i] = demand.Row{DiameterIn: r.DiameterIn, SlopeFtPerFt: r.SlopeFtPerFt, Max: pick(r)}
	}
	return out
}

func maxDfu(r dfuRow) float64     { return r.MaxDfu }
func baseMaxDfu(r dfuRow) float64 { return r.BaseMaxDfu }
func maxGpm(r dfuRow) float64     { return r.MaxGpm }

type tableRecord struct {
	Key  string   `json:"key"`
	Rows []dfuRow `json:"rows"`
}

type ventRecord struct {
	Key               string   `json:"key"`
	BranchRows        []dfuRow `json:"branchRows"`
	StackRows         []dfuRow `json:"stackRows"`
	ReferenceLengthFt float64  `json:"referenceLengthFt"`
}

// readTables registers every valid table record into reg and returns the
// code profiles the file defines. The file is optional, so a malformed file
// is a warning.
func readTables(data []byte, reg *demand.Registry, rep *Report) []codes.Profile {
	var tf tablesFile
	if err := json.Unmarshal(data, &tf); err != nil {
		rep.warn("%s: %v", TablesFile, err)
		return nil
	}
	eachRecord(tf.FixtureDemandCurves, "fixtureDemandCurves", rep, reg.AddCurve)
	eachRecord(tf.SanitaryDfuTables, "sanitaryDfuTables", rep, func(t tableRecord) error {
		return reg.AddSanitaryDfu(demand.CapacityTable{Key: t.Key, Rows: toRows(t.Rows, maxDfu)})
	})
	eachRecord(tf.SanitaryBranchTables, "sanitaryBranchTables", rep, func(t tableRecord) error {
		return reg.AddSanitaryBranch(demand.CapacityTable{Key: t.Key, Rows: toRows(t.Rows, maxDfu)})
	})
	eachRecord(tf.VentTables, "ventTables", rep, func(v ventRecord) error {
		return reg.AddVent(demand.VentTable{
			Key:               v.Key,
			BranchRows:        toRows(v.BranchRows, maxDfu),
			StackRows:         toRows(v.StackRows, baseMaxDfu),
			ReferenceLengthFt: v.ReferenceLengthFt,
		})
	})
	eachRecord(tf.StormLeaderTables, "stormLeaderTables", rep, func(t tableRecord) error {
		return reg.AddStormLeader(demand.CapacityTable{Key: t.Key, Rows: toRows(t.Rows, maxGpm)})
	})
	eachRecord(tf.GasMethods, "gasMethods", rep, reg.AddGasMethod)

	var profiles []codes.Profile
	eachRecord(tf.CodeProfiles, "codeProfiles", rep, func(p codes.Profile) error {
		if p.ID == "" {
			return errors.New("profile id is empty")
		}
		profiles = append(profiles, p)
		return nil
	})
	return profiles
}
