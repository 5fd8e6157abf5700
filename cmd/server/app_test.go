package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "seed", "export", "create-user"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestExportRejectsUnknownEntity(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"export", "--entity", "invoices"})
	err := root.Execute()
	require.ErrorIs(t, err, export.ErrUnknownEntity)
}

func TestAttachmentStoreLocal(t *testing.T) {
	cfg := config.Config{AttachmentBackend: config.BackendLocal, UploadDir: t.TempDir(), UploadURLPrefix: "/uploads"}
	st, closeFn, err := attachmentStore(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = closeFn() }()
	_, ok := st.(*attachments.Local)
	assert.True(t, ok)
}
