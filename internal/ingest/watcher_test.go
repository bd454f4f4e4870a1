// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchTriggersReload(t *testing.T) {
	if testing.Short() {
		t.Skip("watch test waits out the debounce window")
	}

	r, holder, _ := newTestRunner(t, sampleCSV)

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, holder.Current().Records, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		_ = r.Watch(ctx)
	}()

	// Give the watcher a moment to register before touching the file.
	time.Sleep(200 * time.Millisecond)

	extra := sampleCSV + "OD4,Hussain,Bakery,Cakes,Bodi,2016-10-24,West,1659,0.31,614.94,Tamil Nadu\n"
	require.NoError(t, os.WriteFile(r.cfg.DatasetPath, []byte(extra), 0o600))

	require.Eventually(t, func() bool {
		return len(holder.Current().Records) == 4
	}, 15*time.Second, 100*time.Millisecond, "watcher did not reload the dataset")

	cancel()
	select {
	case <-watchDone:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
