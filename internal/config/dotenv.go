package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// loadDotEnv applies KEY=VALUE pairs from a dotenv file to the process
// environment and returns how many were applied. A missing file is not an
// error. Variables that are already set win over the file.
func loadDotEnv(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	values, err := parseDotEnv(f)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, kv := range values {
		if os.Getenv(kv[0]) != "" {
			continue
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// parseDotEnv returns key/value pairs in file order. Blank lines, # comments
// and an "export " prefix are ignored; quoted values keep inner spaces and
// unquoted values drop a trailing " # comment".
func parseDotEnv(r io.Reader) ([][2]string, error) {
	var out [][2]string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, [2]string{k, dotEnvValue(strings.TrimSpace(v))})
	}
	return out, sc.Err()
}

func dotEnvValue(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
