package utils

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"Male", "Female"}, "Male"))
	assert.False(t, Contains([]string{"Male", "Female"}, "male"))
	assert.False(t, Contains(nil, "Male"))
	assert.True(t, Contains([]int{1, 2, 3}, 2))
}

func TestHasColumn(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"gender", "count"},
		{"Male", "3"},
	})
	require.NoError(t, df.Error())

	assert.True(t, HasColumn(df, "gender"))
	assert.False(t, HasColumn(df, "Gender"))
}

func TestWriteFrame(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"gender", "count"},
		{"Male", "3"},
		{"Female", "1"},
	})
	require.NoError(t, df.Error())

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, WriteFrame(f, "Sheet1", df))

	val, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "gender", val)

	val, err = f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}
