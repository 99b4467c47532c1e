package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    ImageName
		wantErr bool
	}{
		{name: "front", file: "card_1_front.png", want: ImageName{CardID: 1, Side: "front"}},
		{name: "back", file: "card_42_back.png", want: ImageName{CardID: 42, Side: "back"}},
		{name: "icon", file: "card_7_icon.png", want: ImageName{CardID: 7, Side: "icon"}},
		{name: "logo", file: "logo.png", wantErr: true},
		{name: "unknown side", file: "card_1_side.png", wantErr: true},
		{name: "negative id", file: "card_-1_icon.png", wantErr: true},
		{name: "prefix", file: "x/card_1_icon.png", wantErr: true},
		{name: "suffix", file: "card_1_icon.png.bak", wantErr: true},
		{name: "uppercase", file: "CARD_1_ICON.PNG", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImageName(tt.file)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindImageName, KindOf(err))
				assert.Contains(t, err.Error(), "unexpected file name format in import")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.file, got.String())
		})
	}
}

func TestRenameImage(t *testing.T) {
	got, err := RenameImage("card_1_icon.png", 5)
	require.NoError(t, err)
	assert.Equal(t, "card_6_icon.png", got)

	got, err = RenameImage("card_12_front.png", 0)
	require.NoError(t, err)
	assert.Equal(t, "card_12_front.png", got)

	_, err = RenameImage("logo.png", 5)
	assert.Equal(t, KindImageName, KindOf(err))
}

func TestShiftID(t *testing.T) {
	got, err := ShiftID(math.MaxInt-5, 5)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	got, err = ShiftID(-3, 2)
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	_, err = ShiftID(math.MaxInt-4, 5)
	require.Error(t, err)
	assert.Equal(t, KindInvalidID, KindOf(err))

	_, err = RenameImage("card_2_icon.png", math.MaxInt-1)
	assert.Equal(t, KindInvalidID, KindOf(err))
}

func TestValidateMemberName(t *testing.T) {
	assert.NoError(t, ValidateMemberName("card_3_back.png"))

	err := ValidateMemberName("notes.txt")
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
	assert.Contains(t, err.Error(), "unexpected file in import")

	err = ValidateMemberName("logo.png")
	require.Error(t, err)
	assert.Equal(t, KindImageName, KindOf(err))
}

func TestParseCardID(t *testing.T) {
	tests := []struct {
		value    string
		want     int
		wantKind Kind
	}{
		{value: "1", want: 1},
		{value: "0003", want: 3},
		{value: "0", wantKind: KindInvalidID},
		{value: "-4", wantKind: KindInvalidID},
		{value: "abc", wantKind: KindInvalidID},
		{value: "", wantKind: KindInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseCardID(tt.value)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(KindIO, base, "failed to open %s", "a.zip")

	assert.Equal(t, "failed to open a.zip: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, KindIO, KindOf(err))
	assert.Nil(t, Wrap(KindIO, nil, "unused"))
	assert.Equal(t, Kind(""), KindOf(base))
}
