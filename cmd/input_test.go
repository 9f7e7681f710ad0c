package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/project"
)

func TestInputCollector_Choose(t *testing.T) {
	choices := []string{"Agile", "Waterfall", "Scrum", "Kanban"}
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"number", "2\n", "Waterfall", false},
		{"label any case", "kanban\n", "Kanban", false},
		{"empty keeps default", "\n", "Agile", false},
		{"end of input keeps default", "", "Agile", false},
		{"last line without newline", "3", "Scrum", false},
		{"retry after invalid", "9\nfoo\n4\n", "Kanban", false},
		{"invalid at end of input", "foo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := newInputCollector(strings.NewReader(tt.input), &out)

			got, err := c.choose("Methodology", choices, "Agile")

			if tt.wantErr {
				assert.ErrorIs(t, err, project.ErrUnknownOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "  4) Kanban")
		})
	}
}

func TestInputCollector_Collect(t *testing.T) {
	current, err := project.NewRequest("Old", "Old description", "Finance", "Kanban", "SAP")
	require.NoError(t, err)
	var out bytes.Buffer
	c := newInputCollector(strings.NewReader("New name\n\n\n1\n\n"), &out)

	got, err := c.collect(current)

	require.NoError(t, err)
	assert.Equal(t, "New name", got.Name)
	assert.Equal(t, "Old description", got.Description)
	assert.Equal(t, project.IndustryFinance, got.Industry)
	assert.Equal(t, project.MethodologyAgile, got.Methodology)
	assert.Equal(t, project.TechnologySAP, got.Technology)
	assert.Contains(t, out.String(), "Project description [Old description]: ")
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	require.NoError(t, writeFileAtomic(path, []byte("first")))
	require.NoError(t, writeFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := writeFileAtomic(filepath.Join(t.TempDir(), "missing", "out.pdf"), []byte("x"))
	assert.Error(t, err)
}

func TestInputSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte(generatedText), 0o600))

	t.Run("from file", func(t *testing.T) {
		s, err := inputSession(ctx, &cobra.Command{}, path, "Checkout Revamp")
		require.NoError(t, err)

		doc, err := s.Document(ctx)
		require.NoError(t, err)
		assert.Equal(t, generatedText, doc.Text)
		assert.Equal(t, "Checkout Revamp", doc.ProjectName)
		assert.Empty(t, doc.TicketKey)
	})

	t.Run("from stdin", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("piped text"))
		s, err := inputSession(ctx, cmd, "-", "")
		require.NoError(t, err)

		doc, err := s.Document(ctx)
		require.NoError(t, err)
		assert.Equal(t, "piped text", doc.Text)
	})

	t.Run("each call is isolated", func(t *testing.T) {
		a, err := inputSession(ctx, &cobra.Command{}, path, "")
		require.NoError(t, err)
		b, err := inputSession(ctx, &cobra.Command{}, path, "")
		require.NoError(t, err)

		docA, err := a.Document(ctx)
		require.NoError(t, err)
		require.NoError(t, a.MarkFiled(ctx, docA.ID, "SAM1-7"))

		docB, err := b.Document(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, docA.ID, docB.ID)
		assert.Empty(t, docB.TicketKey)
	})

	t.Run("empty input", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader("  \n"))
		_, err := inputSession(ctx, cmd, "-", "")
		assert.ErrorIs(t, err, pipeline.ErrNoDocument)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := inputSession(ctx, &cobra.Command{}, filepath.Join(t.TempDir(), "nope.txt"), "")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
