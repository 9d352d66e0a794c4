package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/dnswatch/internal/constants"
	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
)

// FileStore keeps the baseline snapshot in a single JSON or YAML file.
//
// Load and Save each hold an advisory lock on <path>.lock, so a reader never
// sees a half-written file. The lock is not held between Load and Save:
// two monitors sharing one file still race on the baseline.
type FileStore struct {
	path  string
	codec codec
	flock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		codec: codecFor(path),
		flock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*entity.Snapshot, error) {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return entity.NewSnapshot(), nil
	}

	if err := s.lock(domain.ErrStateReadFailed); err != nil {
		return nil, err
	}
	defer s.flock.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entity.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", s.path, domain.NewOpError("read state file", domain.ErrStateReadFailed, err))
	}

	zones, err := s.codec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, domain.NewOpError("decode "+s.codec.name+" state file", domain.ErrCorruptState, err))
	}

	snapshot := &entity.Snapshot{Zones: zones}
	snapshot.FillDefaults()
	return snapshot, nil
}

func (s *FileStore) Save(ctx context.Context, snapshot *entity.Snapshot) error {
	if snapshot == nil {
		snapshot = entity.NewSnapshot()
	}

	data, err := s.codec.encode(snapshot.Zones)
	if err != nil {
		return fmt.Errorf("marshaling state for %s: %w", s.path, domain.NewOpError("marshal state", domain.ErrStateSerializeFail, err))
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory %s: %w", dir, domain.NewOpError("create state directory", domain.ErrStateWriteFailed, err))
		}
	}

	if err := s.lock(domain.ErrStateWriteFailed); err != nil {
		return err
	}
	defer s.flock.Unlock()

	tmpPath := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmpPath, data, constants.FilePermissionOwnerRW); err != nil {
		return fmt.Errorf("writing temp state file %s: %w", tmpPath, domain.NewOpError("write temp state file", domain.ErrStateWriteFailed, err))
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming state file from %s to %s: %w", tmpPath, s.path, domain.NewOpError("rename state file", domain.ErrStateWriteFailed, err))
	}

	return nil
}

func (s *FileStore) lock(kind error) error {
	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock %s: %w", s.flock.Path(), domain.NewOpError("lock state file", kind, err))
	}
	return nil
}

// TouchLastRun records when the monitor last started.
func TouchLastRun(path string, t time.Time) error {
	if path == "" {
		return nil
	}
	data := []byte(t.Format(constants.LastRunLayout))
	if err := os.WriteFile(path, data, constants.FilePermissionShared); err != nil {
		return fmt.Errorf("writing last run file %s: %w", path, err)
	}
	return nil
}

type codec struct {
	name   string
	encode func(map[string][]entity.Record) ([]byte, error)
	decode func([]byte) (map[string][]entity.Record, error)
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec
	default:
		return jsonCodec
	}
}

var jsonCodec = codec{
	name: "json",
	encode: func(zones map[string][]entity.Record) ([]byte, error) {
		data, err := json.MarshalIndent(zones, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	},
	decode: func(data []byte) (map[string][]entity.Record, error) {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, errors.New("empty file")
		}
		var raw map[string][]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, errors.New("null document")
		}

		zones := make(map[string][]entity.Record, len(raw))
		for zone, items := range raw {
			records := make([]entity.Record, 0, len(items))
			for i, item := range items {
				r, err := decodeJSONRecord(item)
				if err != nil {
					return nil, fmt.Errorf("zone %s record %d: %w", zone, i, err)
				}
				records = append(records, r)
			}
			zones[zone] = records
		}
		return zones, nil
	},
}

// legacyRecord is the Route 53 ResourceRecordSet layout (capitalised keys,
// values under ResourceRecords) found in baselines written by older monitors.
type legacyRecord struct {
	Name            string `json:"Name"`
	Type            string `json:"Type"`
	TTL             int64  `json:"TTL"`
	ResourceRecords []struct {
		Value string `json:"Value"`
	} `json:"ResourceRecords"`
	AliasTarget *struct {
		DNSName              string `json:"DNSName"`
		HostedZoneID         string `json:"HostedZoneId"`
		EvaluateTargetHealth bool   `json:"EvaluateTargetHealth"`
	} `json:"AliasTarget"`
}

// decodeJSONRecord decodes one record. A record carrying the legacy "Name"
// key is migrated to the current layout with its name decoded the same way
// fetched records are, so an unchanged zone compares equal on the next run.
func decodeJSONRecord(data []byte) (entity.Record, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return entity.Record{}, err
	}

	if _, ok := keys["Name"]; !ok {
		var r entity.Record
		if err := json.Unmarshal(data, &r); err != nil {
			return entity.Record{}, err
		}
		return r, nil
	}

	var legacy legacyRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		return entity.Record{}, err
	}
	r := entity.Record{
		Name:   entity.DecodeName(legacy.Name),
		Type:   legacy.Type,
		TTL:    legacy.TTL,
		Values: make([]string, 0, len(legacy.ResourceRecords)),
	}
	for _, rr := range legacy.ResourceRecords {
		r.Values = append(r.Values, rr.Value)
	}
	if legacy.AliasTarget != nil {
		r.AliasTarget = &entity.AliasTarget{
			DNSName:              entity.DecodeName(legacy.AliasTarget.DNSName),
			HostedZoneID:         legacy.AliasTarget.HostedZoneID,
			EvaluateTargetHealth: legacy.AliasTarget.EvaluateTargetHealth,
		}
	}
	r.Normalize()
	return r, nil
}

var yamlCodec = codec{
	name: "yaml",
	encode: func(zones map[string][]entity.Record) ([]byte, error) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(zones); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	},
	decode: func(data []byte) (map[string][]entity.Record, error) {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, errors.New("empty file")
		}
		var zones map[string][]entity.Record
		if err := yaml.Unmarshal(data, &zones); err != nil {
			return nil, err
		}
		if zones == nil {
			return nil, errors.New("null document")
		}
		return zones, nil
	},
}
