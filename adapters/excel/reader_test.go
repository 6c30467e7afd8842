package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goancova/domain/core"
	"goancova/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Column_A,Column_B,Column_C,Column_D
1,6.5,a,true
2,7.25,b,FALSE
3,8,a,True
`

func TestReadCSV_InfersKinds(t *testing.T) {
	store, err := ReadCSV(strings.NewReader(sampleCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Column_A", "Column_B", "Column_C", "Column_D"}, store.Names())

	want := map[string]dataset.Kind{
		"Column_A": dataset.Numerical,
		"Column_B": dataset.Numerical,
		"Column_C": dataset.Categorical,
		"Column_D": dataset.Binary,
	}
	for name, kind := range want {
		got, err := store.ColumnType(name)
		require.NoError(t, err)
		assert.Equal(t, kind, got, name)
	}

	b, err := store.Float64s("Column_B")
	require.NoError(t, err)
	assert.Equal(t, []float64{6.5, 7.25, 8}, b)

	d, err := store.Column("Column_D")
	require.NoError(t, err)
	flags, err := d.Bools()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, flags)

	c, _ := store.Column("Column_C")
	n, err := c.Freq(dataset.Cat("a"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReadCSV_MixedColumnFallsBackToCategorical(t *testing.T) {
	store, err := ReadCSV(strings.NewReader("x,y\n1,2\nn/a,3\n"), Options{})
	require.NoError(t, err)

	kind, err := store.ColumnType("x")
	require.NoError(t, err)
	assert.Equal(t, dataset.Categorical, kind)
}

func TestReadCSV_ZeroOneOption(t *testing.T) {
	src := "flag\n0\n1\n1\n"

	store, err := ReadCSV(strings.NewReader(src), Options{})
	require.NoError(t, err)
	kind, _ := store.ColumnType("flag")
	assert.Equal(t, dataset.Numerical, kind)

	store, err = ReadCSV(strings.NewReader(src), Options{ZeroOneAsBinary: true})
	require.NoError(t, err)
	kind, _ = store.ColumnType("flag")
	assert.Equal(t, dataset.Binary, kind)
}

func TestReadCSV_Rejects(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"field count", "a,b\n1,2\n3\n", core.ErrInvalidData},
		{"header only", "a,b\n", core.ErrInvalidData},
		{"duplicate header", "a,a\n1,2\n", core.ErrDuplicateColumn},
		{"empty header", "a,\n1,2\n", core.ErrInvalidData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.src), Options{})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDataReader_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	store, err := NewDataReader(path, Options{}).ReadStore()
	require.NoError(t, err)
	assert.Equal(t, 4, store.Len())
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), Options{}).ReadStore()
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDataReader_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"condition", "age", "score", "note"},
		{"control", 20, 51.5, "x"},
		{"treatment", 30, 75.25},
		{"control", 40, 90, "y"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store, err := NewDataReader(path, Options{}).ReadStore()
	require.NoError(t, err)

	assert.Equal(t, []string{"condition", "age", "score", "note"}, store.Names())
	kind, _ := store.ColumnType("condition")
	assert.Equal(t, dataset.Categorical, kind)

	scores, err := store.Float64s("score")
	require.NoError(t, err)
	assert.Equal(t, []float64{51.5, 75.25, 90}, scores)

	note, _ := store.Column("note")
	labels, _ := note.Labels()
	assert.Equal(t, []string{"x", "", "y"}, labels)
}

func TestInferKind(t *testing.T) {
	assert.Equal(t, dataset.Numerical, InferKind([]string{"1", "2.5", "-3e2"}, Options{}))
	assert.Equal(t, dataset.Binary, InferKind([]string{"true", "FALSE", "1"}, Options{}))
	assert.Equal(t, dataset.Categorical, InferKind([]string{"true", "maybe"}, Options{}))
	assert.Equal(t, dataset.Categorical, InferKind(nil, Options{}))
}

func TestInferKind_NonFiniteMarkersStayCategorical(t *testing.T) {
	for _, marker := range []string{"NaN", "nan", "Inf", "-inf", "infinity", "1e400"} {
		assert.Equal(t, dataset.Categorical, InferKind([]string{"1.5", marker, "3"}, Options{}), marker)
	}

	store, err := ReadCSV(strings.NewReader("score,group\n1.5,a\nnan,b\n3,a\n"), Options{})
	require.NoError(t, err)
	kind, err := store.ColumnType("score")
	require.NoError(t, err)
	assert.Equal(t, dataset.Categorical, kind)
}
