package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

func TestWriterService_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(`{"keyword":"old","count":0}`+"\n"), 0o644))

	ch := make(chan entry)
	var wg sync.WaitGroup
	wg.Add(1)
	go (&WriterService[entry]{FilePath: path}).Start(&wg, ch)

	var senders sync.WaitGroup
	for i := 1; i <= 5; i++ {
		senders.Add(1)
		go func() {
			defer senders.Done()
			ch <- entry{Keyword: "潜水", Count: i}
		}()
	}
	senders.Wait()
	close(ch)
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sum := 0
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		sum += e.Count
		lines++
	}
	assert.Equal(t, 6, lines)
	assert.Equal(t, 15, sum)
}

func TestWriterService_DrainsWhenUnavailable(t *testing.T) {
	ch := make(chan entry)
	var wg sync.WaitGroup
	wg.Add(1)
	go (&WriterService[entry]{FilePath: filepath.Join(t.TempDir(), "missing", "runs.ndjson")}).Start(&wg, ch)

	ch <- entry{Keyword: "x"}
	ch <- entry{Keyword: "y"}
	close(ch)
	wg.Wait()
}
