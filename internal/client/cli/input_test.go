package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(in, "Again?", &out)
	require.Error(t, err)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb\n\nrest\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	next, err := in.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "rest\n", next, "input after the empty line is left unread")
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("X", 3*60*60)

	d, err := parseDate("2024-03-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), d)

	d, err = parseDate(" 2024-03-01 20:30 ", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 20, 30, 0, 0, loc), d)

	_, err = parseDate("March 1st", loc)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestParseRatingAndPrice(t *testing.T) {
	r, err := parseRating("")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = parseRating("4.5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, *r)

	_, err = parseRating("great")
	require.ErrorIs(t, err, common.ErrValidation)

	p, err := parsePrice("45.50")
	require.NoError(t, err)
	assert.Equal(t, int64(4550), *p)

	p, err = parsePrice("19.99")
	require.NoError(t, err)
	assert.Equal(t, int64(1999), *p)

	p, err = parsePrice("")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestParseSeat(t *testing.T) {
	assert.Equal(t, models.Seat{Section: "A", Row: "12", Number: "5"}, parseSeat("A / 12 / 5"))
	assert.Equal(t, models.Seat{Section: "Floor"}, parseSeat("Floor"))
	assert.Equal(t, models.Seat{}, parseSeat(""))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("x")
	require.ErrorIs(t, err, common.ErrValidation)
	_, err = parseID("-1")
	require.ErrorIs(t, err, common.ErrValidation)
}
