// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	gotime "time"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
)

// Date is the number of days since 1970-01-01.
type Date int32

// Timestamp is the number of microseconds since 1970-01-01 00:00:00 UTC.
type Timestamp int64

const (
	secsPerDay         = 86400
	MicroSecsPerSec    = 1000000
	dateLayout         = "2006-01-02"
	timestampLayout    = "2006-01-02 15:04:05.999999"
	timestampMinDigits = "2006-01-02 15:04:05"
	microSecondsDigits = 6
)

func DateFromCalendar(year int32, month, day uint8) Date {
	t := gotime.Date(int(year), gotime.Month(month), int(day), 0, 0, 0, 0, gotime.UTC)
	return Date(floorDiv(t.Unix(), secsPerDay))
}

func ParseDate(s string) (Date, error) {
	t, err := gotime.Parse(dateLayout, s)
	if err != nil {
		return 0, moerr.NewInvalidInputNoCtx("invalid date value '%s'", s)
	}
	return Date(floorDiv(t.Unix(), secsPerDay)), nil
}

func (d Date) ToGoTime() gotime.Time {
	return gotime.Unix(int64(d)*secsPerDay, 0).UTC()
}

func (d Date) String() string {
	return d.ToGoTime().Format(dateLayout)
}

// ToTimestamp is midnight UTC of the date.
func (d Date) ToTimestamp() Timestamp {
	return Timestamp(int64(d) * secsPerDay * MicroSecsPerSec)
}

func FromClockUTC(year int32, month, day, hour, min, sec uint8, msec uint32) Timestamp {
	t := gotime.Date(int(year), gotime.Month(month), int(day), int(hour), int(min), int(sec), 0, gotime.UTC)
	return Timestamp(t.Unix()*MicroSecsPerSec + int64(msec))
}

// ParseTimestamp accepts "YYYY-MM-DD hh:mm:ss" with up to six fractional
// digits, or a bare date.
func ParseTimestamp(s string) (Timestamp, error) {
	if len(s) == len(dateLayout) {
		d, err := ParseDate(s)
		if err != nil {
			return 0, err
		}
		return d.ToTimestamp(), nil
	}
	t, err := gotime.Parse(timestampLayout, s)
	if err != nil || len(s) > len(timestampMinDigits)+1+microSecondsDigits {
		return 0, moerr.NewInvalidInputNoCtx("invalid timestamp value '%s'", s)
	}
	return Timestamp(t.Unix()*MicroSecsPerSec + int64(t.Nanosecond()/1000)), nil
}

func (ts Timestamp) ToGoTime() gotime.Time {
	sec := floorDiv(int64(ts), MicroSecsPerSec)
	usec := int64(ts) - sec*MicroSecsPerSec
	return gotime.Unix(sec, usec*1000).UTC()
}

// String renders the timestamp in UTC, with fractional digits only when
// the value has them.
func (ts Timestamp) String() string {
	return ts.ToGoTime().Format(timestampLayout)
}

func (ts Timestamp) ToDate() Date {
	return Date(floorDiv(int64(ts), secsPerDay*MicroSecsPerSec))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
