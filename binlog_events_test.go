package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRowsCountAndAt(t *testing.T) {
	rows := EventRows{rows: []EventRow{
		{columns: []interface{}{int64(1), "a"}},
		{columns: []interface{}{int64(2), "b"}},
	}}

	assert.Equal(t, 2, rows.Count())
	assert.Equal(t, []interface{}{int64(1), "a"}, rows.At(0).Columns())
	assert.Equal(t, []interface{}{int64(2), "b"}, rows.At(1).Columns())
}

func TestRowsEventAfterImagePicksCorrectSideForUpdate(t *testing.T) {
	before := EventRows{rows: []EventRow{{columns: []interface{}{"before"}}}}
	after := EventRows{rows: []EventRow{{columns: []interface{}{"after"}}}}

	ev := &RowsEvent{
		header: eventHeader{type_: UPDATE_ROWS_EVENT},
		rows1:  before,
		rows2:  after,
	}
	assert.Equal(t, "after", ev.AfterImage().At(0).Columns()[0])
	assert.Equal(t, "before", ev.Image().At(0).Columns()[0])
}

func TestRowsEventAfterImageMirrorsImageForWrite(t *testing.T) {
	only := EventRows{rows: []EventRow{{columns: []interface{}{"row"}}}}
	ev := &RowsEvent{
		header: eventHeader{type_: WRITE_ROWS_EVENT},
		rows1:  only,
	}
	assert.Equal(t, ev.Image().At(0).Columns(), ev.AfterImage().At(0).Columns())
}
