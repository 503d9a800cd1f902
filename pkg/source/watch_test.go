package source

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcherSignalsOnWrite(t *testing.T) {
	path := writeFile(t, sampleCSV)
	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	path := writeFile(t, sampleCSV)
	w, err := NewWatcher(path, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path+".bak", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
		t.Error("unexpected signal for unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestLoaderWatchReloads(t *testing.T) {
	path := writeFile(t, sampleCSV)
	l := NewLoader(&File{Path: path})
	l.Load(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Dataset, 4)
	go l.Watch(ctx, 20*time.Millisecond, func(ds *Dataset) { reloaded <- ds })

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(sampleCSV+"2000,1,1,,Millennium,Calendar\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ds := <-reloaded:
		if len(ds.Events) != 4 || ds.Generation < 2 {
			t.Errorf("reloaded dataset: %d events, generation %d", len(ds.Events), ds.Generation)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}
}

func TestLoaderWatchNonFile(t *testing.T) {
	l := NewLoader(NewHTTP("https://example.org/t.csv"))
	if err := l.Watch(context.Background(), 0, nil); err != nil {
		t.Errorf("Watch on HTTP source = %v, want nil", err)
	}
}
