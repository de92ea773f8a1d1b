// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package coords

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudi-ru/aquakml/spatial"
)

func pt(name string, lon, lat float64) spatial.Point {
	return spatial.Point{Name: name, Lon: lon, Lat: lat}
}

func TestParseDMSMultiline(t *testing.T) {
	want := []spatial.Point{
		pt("точка 1", 50.036125, 53.137306),
		pt("точка 2", 50.036561, 53.137303),
		pt("точка 3", 50.036656, 53.136819),
		pt("точка 4", 50.037119, 53.136183),
		pt("точка 5", 50.037053, 53.135583),
		pt("точка 6", 50.036567, 53.134978),
		pt("точка 7", 50.036208, 53.135106),
		pt("точка 8", 50.036639, 53.135631),
		pt("точка 9", 50.036686, 53.136136),
		pt("точка 10", 50.052894, 53.136781),
	}

	tests := []struct {
		name  string
		input string
	}{
		{
			name: "colon-numbered points",
			input: `
	Самарская область, Волжский район, в районе КСП "Волгарь", левый берег р. Татьянка, на 3 км от устья
	1: 53°8'14.3" СШ 50°2'10.05" ВД 2: 53°8'14.29" СШ 50°2'11.62" ВД 3: 53°8'12.55" СШ 50°2'11.96" ВД
	4: 53°8'10.26" СШ 50°2'13.63" ВД 5: 53°8'8.1" СШ 50°2'13.39" ВД 6: 53°8'5.92" СШ 50°2'11.64" ВД
	7: 53°8'6.38" СШ 50°2'10.35" ВД 8: 53°8'8.27" СШ 50°2'11.9" ВД 9: 53°8'10.09" СШ 50°2'12.07" ВД
	10: 53°8'12.41" СШ 50°3'10.42" ВД
	`,
		},
		{
			name: "dot-numbered points",
			input: `
	Самарская область, Волжский район, в районе КСП "Волгарь", левый берег р. Татьянка, на 3 км от устья
	1. 53°8'14.3" СШ 50°2'10.05" ВД 2. 53°8'14.29" СШ 50°2'11.62" ВД 3. 53°8'12.55" СШ 50°2'11.96" ВД
	4. 53°8'10.26" СШ 50°2'13.63" ВД 5. 53°8'8.1" СШ 50°2'13.39" ВД 6. 53°8'5.92" СШ 50°2'11.64" ВД
	7. 53°8'6.38" СШ 50°2'10.35" ВД 8. 53°8'8.27" СШ 50°2'11.9" ВД 9. 53°8'10.09" СШ 50°2'12.07" ВД
	10. 53°8'12.41" СШ 50°3'10.42" ВД
	`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDMS(tc.input)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseDMS() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDMSSemicolonSeparated(t *testing.T) {
	input := `
	Самара г (Куйбышевский р-н); 1 км от устья, ПБ,
	53° 8' 26.28188"СШ 50° 3' 44.85482" ВД ;
	53° 8' 26.82976"СШ 50° 3' 45.58006" ВД ;
	53° 8' 27.78891"СШ 50° 3' 46.70413" ВД ;
	53° 8' 28.55927"СШ 50° 3' 47.18712" ВД ;
	53° 8' 29.75759"СШ 50° 3' 47.64177" ВД ;
	53° 8' 31.65782"СШ 50° 3' 47.96726" ВД ;
	53° 8' 33.27557"СШ 50° 3' 48.02292" ВД ;
	53° 8' 34.79051"СШ 50° 3' 48.26374" ВД ;
	53° 8' 34.80392"СШ 50° 3' 46.61801" ВД ;
	53° 8' 32.18493"СШ 50° 3' 46.36416" ВД ;
	53° 8' 31.67124"СШ 50° 3' 46.36459" ВД ;
	53° 8' 29.891"СШ 50° 3' 45.99598" ВД ;
	53° 8' 28.2902"СШ 50° 3' 45.31413" ВД ;
	53° 8' 26.94595"СШ 50° 3' 43.67825" ВД
	`

	want := []spatial.Point{
		pt("точка 1", 50.06246, 53.140634),
		pt("точка 2", 50.062661, 53.140786),
		pt("точка 3", 50.062973, 53.141052),
		pt("точка 4", 50.063108, 53.141266),
		pt("точка 5", 50.063234, 53.141599),
		pt("точка 6", 50.063324, 53.142127),
		pt("точка 7", 50.06334, 53.142577),
		pt("точка 8", 50.063407, 53.142997),
		pt("точка 9", 50.062949, 53.143001),
		pt("точка 10", 50.062879, 53.142274),
		pt("точка 11", 50.062879, 53.142131),
		pt("точка 12", 50.062777, 53.141636),
		pt("точка 13", 50.062587, 53.141192),
		pt("точка 14", 50.062133, 53.140818),
	}

	got, err := ParseDMS(input)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDMS() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDMSNoPointNumbers(t *testing.T) {
	input := `
	Тындинский р-н ; 4.0-23.0 км от устья, ЛБ, 55° 18' 26"СШ 123° 12' 2" ВД ; 55° 12' 13"СШ 123° 16' 10" ВД
	`

	want := []spatial.Point{
		pt("точка 1", 123.200556, 55.307222),
		pt("точка 2", 123.269444, 55.203611),
	}

	got, err := ParseDMS(input)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDMS() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDMSSouthWestHemispheres(t *testing.T) {
	got, err := ParseDMS(`10°20'30" ЮШ 40°50'60" ЗД`)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "точка 1", got[0].Name)
	assert.InDelta(t, -40.85, got[0].Lon, 1e-6)
	assert.InDelta(t, -10.341667, got[0].Lat, 1e-6)
}

func TestStandaloneTokenBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		tokens []string
		want   bool
	}{
		{"west after space", `40°50'60" ЗД`, []string{"ЗД"}, true},
		{"lowercase token", `40°50'60" зд`, []string{"ЗД"}, true},
		{"token at end of string", "координаты ЗД", []string{"ЗД"}, true},
		{"letter prefix suppresses", "азимут ЮЗД-25", []string{"ЗД"}, false},
		{"letter suffix suppresses", "ЗДАНИЕ у реки", []string{"ЗД"}, false},
		{"latin west", `10°0'0" N 20°0'0" W`, []string{"W"}, true},
		{"latin letter context", "WGS84", []string{"W"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := make([]*regexp.Regexp, 0, len(tc.tokens))
			for _, tok := range tc.tokens {
				res = append(res, standaloneToken(tok))
			}

			assert.Equal(t, tc.want, hasStandaloneToken(tc.text, res))
		})
	}
}

func TestParseDMSOddCountError(t *testing.T) {
	_, err := ParseDMS(`53° 8' 26"СШ 50° 3' 44" ВД ; 53° 8' 26"СШ`)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "Нечетное количество найденных ДМС координат")
	assert.Equal(t, ErrorKindOddCount, KindOf(err))
}

func TestParseDMSOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"latitude above 90", `91°0'0"СШ 40°0'0"ВД`},
		{"longitude above 180", `90°0'0"СШ 181°0'0"ВД`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDMS(tc.input)
			require.Error(t, err)

			assert.Contains(t, err.Error(), "Координаты ДМС вне допустимого диапазона WGS84")
			assert.Equal(t, ErrorKindDMSOutOfRange, KindOf(err))
		})
	}
}

func TestParseDMSZeroPointSkipped(t *testing.T) {
	// The zero pair is dropped but still occupies pair index 1, so the
	// surviving point keeps its own number.
	got, err := ParseDMS(`1: 0°0'0"СШ 0°0'0"ВД; 2: 55°45'21"СШ 37°37'04"ВД`)
	require.NoError(t, err)

	want := []spatial.Point{pt("точка 2", 37.617778, 55.755833)}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDMS() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDMSCommaSeconds(t *testing.T) {
	got, err := ParseDMS(`1. 54°31'20,037"СШ 55°56'36,135"ВД`)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "точка 1", got[0].Name)
	assert.InDelta(t, 55.943371, got[0].Lon, 2e-6)
	assert.InDelta(t, 54.522233, got[0].Lat, 2e-6)
}

func TestParseDMSNamedPointLabel(t *testing.T) {
	got, err := ParseDMS(`точка 7: 55°45'21"СШ 37°37'04"ВД`)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "точка 7", got[0].Name)
}

func TestParseDMSNoCoordinates(t *testing.T) {
	got, err := ParseDMS("Просто текстовое описание без каких-либо координат.")
	require.NoError(t, err)
	assert.Empty(t, got)
}
