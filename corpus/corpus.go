// Package corpus persists generated/mutated programs to disk (and,
// optionally, to a GCS bucket), and exposes the pieces a worker's in-memory
// corpus view needs to satisfy prog.CorpusProvider.
package corpus

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/nine-point-eight-p/flicker/prog"
)

// Corpus is an in-memory, disk-backed set of programs, keyed by fingerprint
// so re-adding an already-known program is a no-op.
type Corpus struct {
	dir  string
	meta *prog.Metadata

	// Replica, if set, receives a copy of every program Add persists
	// locally. A nil Replica keeps the corpus purely local-disk.
	Replica *GCSReplica

	mu    sync.RWMutex
	progs []*prog.Prog
	byFP  map[string]int
}

// Open loads every canonical program file already present under dir (created
// if missing) into memory, resolving them against meta.
func Open(dir string, meta *prog.Metadata) (*Corpus, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	c := &Corpus{dir: dir, meta: meta, byFP: map[string]int{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) == ".idx" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		p, err := prog.Unmarshal(meta, data)
		if err != nil {
			continue
		}
		c.progs = append(c.progs, p)
		c.byFP[e.Name()] = len(c.progs) - 1
	}
	return c, nil
}

// Add stores p if it isn't already present, writing both the canonical
// program file and its flatbuffers sidecar index record.
func (c *Corpus) Add(p *prog.Prog) (added bool, err error) {
	fp := p.Fingerprint()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byFP[fp]; ok {
		return false, nil
	}

	data := p.Marshal()
	path := filepath.Join(c.dir, fp)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	idx := BuildIndexRecord(fp, len(p.Calls), len(data))
	if err := os.WriteFile(path+".idx", idx, 0o644); err != nil {
		return false, err
	}
	if c.Replica != nil {
		if err := c.Replica.Upload(context.Background(), fp, data); err != nil {
			return false, err
		}
	}

	c.progs = append(c.progs, p)
	c.byFP[fp] = len(c.progs) - 1
	return true, nil
}

// Count implements prog.CorpusProvider.
func (c *Corpus) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.progs)
}

// Random implements prog.CorpusProvider.
func (c *Corpus) Random(rng *rand.Rand) *prog.Prog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.progs) == 0 {
		return nil
	}
	return c.progs[rng.Intn(len(c.progs))].Clone()
}

// All returns a snapshot slice of every program currently in the corpus.
func (c *Corpus) All() []*prog.Prog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*prog.Prog, len(c.progs))
	copy(out, c.progs)
	return out
}
