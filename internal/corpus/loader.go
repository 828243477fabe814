package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// fetchTimeout bounds a remote corpus download.
const fetchTimeout = 30 * time.Second

// userAgent identifies corpus fetch requests.
const userAgent = "superlig/1.0 (corpus ingestion)"

// LoadFile reads records from a local JSON file. Files ending in .jsonl (or
// .ndjson) are parsed line by line; anything else must be a JSON array of
// records.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".ndjson") {
		records, err := decodeLines(f)
		if err != nil {
			return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
		}
		return records, nil
	}

	records, err := decodeArray(f)
	if err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}
	return records, nil
}

// Fetch downloads records from an HTTP(S) endpoint serving a JSON array.
func Fetch(ctx context.Context, url string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("corpus: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("corpus: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("corpus: unexpected status %d for %s", resp.StatusCode, url)
	}

	records, err := decodeArray(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("corpus: parse response from %s: %w", url, err)
	}
	return records, nil
}

func decodeArray(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeLines(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
