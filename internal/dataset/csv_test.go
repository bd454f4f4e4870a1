// SPDX-License-Identifier: MIT

package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = "Order ID,Customer Name,Category,Sub Category,City,Order Date,Region,Sales,Discount,Profit,State"

func TestParseCSV(t *testing.T) {
	input := sampleHeader + "\n" +
		"OD1,Harish,Oil & Masala,Masalas,Vellore,11/08/2017,North,1254,0.12,401.28,Tamil Nadu\n" +
		"OD2,Sudha,Beverages,Health Drinks,Krishnagiri,2017-11-20,South,749,0.18,149.80,Tamil Nadu\n"

	result, err := ParseCSV(strings.NewReader(input), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Zero(t, result.Skipped)

	r := result.Records[0]
	assert.Equal(t, "OD1", r.OrderID)
	assert.Equal(t, "Harish", r.CustomerName)
	assert.Equal(t, "Oil & Masala", r.Category)
	assert.Equal(t, "Masalas", r.SubCategory)
	assert.Equal(t, "Vellore", r.City)
	assert.Equal(t, "North", r.Region)
	assert.Equal(t, "Tamil Nadu", r.State)
	assert.Equal(t, 2017, r.Year())
	assert.Equal(t, time.November, r.Month())
	assert.InDelta(t, 1254.0, r.Sales, 0.001)
	assert.InDelta(t, 0.12, r.Discount, 0.001)
	assert.InDelta(t, 401.28, r.Profit, 0.001)
}

func TestParseCSVHeaderVariants(t *testing.T) {
	input := "order id,CUSTOMER NAME,category,Sub-Category,city,order_date,region,sales,discount,profit,state\n" +
		"OD1,A,Snacks,Noodles,Chennai,01/05/2018,West,100,0,10,Tamil Nadu\n"

	result, err := ParseCSV(strings.NewReader(input), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Noodles", result.Records[0].SubCategory)
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	input := "Sales,Order ID,Profit,Discount,Category,Sub Category,City,Order Date,Region,State,Customer Name\n" +
		"200,OD9,20,0.1,Bakery,Breads,Madurai,2016-03-01,East,Tamil Nadu,Kumar\n"

	result, err := ParseCSV(strings.NewReader(input), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "OD9", result.Records[0].OrderID)
	assert.InDelta(t, 200.0, result.Records[0].Sales, 0.001)
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), ParseOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseCSVHeaderOnly(t *testing.T) {
	result, err := ParseCSV(strings.NewReader(sampleHeader+"\n"), ParseOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.Skipped)
}

func TestParseCSVMissingColumn(t *testing.T) {
	input := "Order ID,Customer Name,Category\nOD1,A,Snacks\n"
	_, err := ParseCSV(strings.NewReader(input), ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestParseCSVLenientSkipsBadRows(t *testing.T) {
	input := sampleHeader + "\n" +
		"OD1,A,Snacks,Noodles,Chennai,not-a-date,West,100,0,10,Tamil Nadu\n" +
		"OD2,B,Snacks,Noodles,Chennai,01/05/2018,West,abc,0,10,Tamil Nadu\n" +
		"OD3,C,Snacks,Noodles,Chennai,01/05/2018,West,100,1.5,10,Tamil Nadu\n" +
		"OD4,D,Snacks,Noodles,Chennai,01/05/2018,West,100,0.2,10,Tamil Nadu\n"

	result, err := ParseCSV(strings.NewReader(input), ParseOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, "OD4", result.Records[0].OrderID)
}

func TestParseCSVStrictFailsOnBadRow(t *testing.T) {
	input := sampleHeader + "\n" +
		"OD1,A,Snacks,Noodles,Chennai,not-a-date,West,100,0,10,Tamil Nadu\n"

	_, err := ParseCSV(strings.NewReader(input), ParseOptions{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseOrderDateLayouts(t *testing.T) {
	for _, in := range []string{"2017-11-08", "11/08/2017", "11/8/2017", "11-08-2017", "11-8-2017"} {
		got, err := ParseOrderDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2017, got.Year(), in)
		assert.Equal(t, time.November, got.Month(), in)
	}

	_, err := ParseOrderDate("8th Nov 2017")
	assert.Error(t, err)
	_, err = ParseOrderDate("")
	assert.Error(t, err)
}

func TestRecordMargin(t *testing.T) {
	r := Record{Sales: 200, Profit: 50}
	assert.InDelta(t, 25.0, r.Margin(), 0.001)

	assert.Zero(t, Record{Sales: 0, Profit: 10}.Margin())
}

func TestRecordMonthKey(t *testing.T) {
	d, err := ParseOrderDate("2017-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2017-03", Record{OrderDate: d}.MonthKey())
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder()
	assert.True(t, h.Current().Empty())

	snap := &Snapshot{Records: []Record{{OrderID: "OD1"}}, LoadedAt: time.Now()}
	h.Swap(snap)
	assert.False(t, h.Current().Empty())
	assert.Equal(t, "OD1", h.Current().Records[0].OrderID)

	h.Swap(nil)
	assert.True(t, h.Current().Empty())
}
