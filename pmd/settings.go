// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SettingType specifies PMD measurement settings.
type SettingType uint8

const (
	SampleRateSetting       SettingType = 0
	ResolutionSetting       SettingType = 1
	RangeUnitSetting        SettingType = 2
	ChannelsSetting         SettingType = 4
	ConversionFactorSetting SettingType = 5
)

const headerSize = 2

// settingTypes holds the value encoding of each setting type. n
// is the number of values a written setting must hold.
var settingTypes = [...]struct {
	enc  FieldEncoding
	n    byte
	size byte
}{
	SampleRateSetting:       {enc: UnsignedInt, n: 1, size: uint16Size},
	ResolutionSetting:       {enc: UnsignedInt, n: 1, size: uint16Size},
	RangeUnitSetting:        {enc: UnsignedInt, n: 1, size: uint16Size},
	ChannelsSetting:         {enc: UnsignedByte, n: 1, size: uint8Size},
	ConversionFactorSetting: {enc: Float, n: 1, size: float32Size},
}

// Wire sizes in bytes.
const (
	uint8Size   = 1
	uint16Size  = 2
	int24Size   = 3
	float32Size = 4
	float64Size = 8
)

func settingSize(s ...Setting) int {
	var n int
	for _, t := range s {
		n += t.Size()
	}
	return n
}

// Setting defines the behaviour of PMD measurement settings.
type Setting interface {
	// Size returns the number of bytes the setting
	// writes to the PMD Bluetooth service control
	// point characteristic.
	Size() int

	write([]byte) (int, error)
}

// ParseSettings decodes the settings list returned by the PMD control
// point for a settings query or a measurement start request.
func ParseSettings(data []byte) ([]Setting, error) {
	var settings []Setting
	for len(data) != 0 {
		if uint(data[0]) >= uint(len(settingTypes)) || settingTypes[data[0]].enc == 0 {
			return settings, fmt.Errorf("unknown setting type: %x", data[0])
		}
		var (
			set Setting
			err error
		)
		switch enc := settingTypes[data[0]].enc; enc {
		case UnsignedByte:
			var s Uint8
			err = s.UnmarshalBinary(data)
			set = s
		case UnsignedInt:
			var s Uint16
			err = s.UnmarshalBinary(data)
			set = s
		case Float:
			var s Float32
			err = s.UnmarshalBinary(data)
			set = s
		default:
			return settings, fmt.Errorf("unknown setting encoding: %v", enc)
		}
		if err != nil {
			return settings, err
		}
		data = data[set.Size():]
		settings = append(settings, set)
	}
	return settings, nil
}

// StreamSettings returns the sample rate and conversion factor held in
// settings. The sample rate is the first offered value and is zero if no
// sample rate setting is present. The factor is 1 if no conversion factor
// setting is present.
func StreamSettings(settings []Setting) (sampleRate uint32, factor float32) {
	factor = 1
	for _, s := range settings {
		switch s := s.(type) {
		case Uint16:
			if s.Type == SampleRateSetting && len(s.Val) != 0 {
				sampleRate = uint32(s.Val[0])
			}
		case Float32:
			if s.Type == ConversionFactorSetting && len(s.Val) != 0 {
				factor = s.Val[0]
			}
		}
	}
	return sampleRate, factor
}

// setCommand specifies the command, and recording and measurement types
// for a control point command.
type setCommand struct {
	Command Command
	Record  RecordingType
	Measure MeasureType
}

func (w setCommand) Size() int { return 2 }

func (w setCommand) write(dst []byte) (int, error) {
	const size = 2
	if len(dst) < size {
		return 0, fmt.Errorf("dst too short")
	}
	dst[0] = byte(w.Command)
	dst[1] = byte(w.Record)<<7 | byte(w.Measure)
	return size, nil
}

// checkWrite validates that a setting with n values of the given
// size may be written to dst.
func checkWrite(typ SettingType, n int, size byte, need int, dst []byte) error {
	if uint(typ) >= uint(len(settingTypes)) || int(settingTypes[typ].n) != n || settingTypes[typ].size != size {
		return fmt.Errorf("invalid setting type: %d", typ)
	}
	if len(dst) < need {
		return fmt.Errorf("dst too short")
	}
	return nil
}

// unmarshalValues decodes the values of the setting in data.
func unmarshalValues(data []byte, size int, enc FieldEncoding) ([]Value, error) {
	if len(data) < headerSize {
		return nil, io.ErrUnexpectedEOF
	}
	n := int(data[1])
	if len(data) < headerSize+n*size {
		return nil, io.ErrUnexpectedEOF
	}
	vals := make([]Value, n)
	data = data[headerSize:]
	for i := range vals {
		v, err := DecodeField(data[:size], enc)
		if err != nil {
			return nil, err
		}
		vals[i] = v
		data = data[size:]
	}
	return vals, nil
}

// Uint8 is an 8-bit integer setting.
type Uint8 struct {
	Type SettingType
	Val  []uint8
}

func (w Uint8) Size() int { return headerSize + len(w.Val)*uint8Size }

func (w Uint8) write(dst []byte) (int, error) {
	err := checkWrite(w.Type, len(w.Val), uint8Size, w.Size(), dst)
	if err != nil {
		return 0, err
	}
	dst[0] = byte(w.Type)
	dst[1] = byte(len(w.Val))
	copy(dst[headerSize:], w.Val)
	return w.Size(), nil
}

func (w *Uint8) UnmarshalBinary(data []byte) error {
	vals, err := unmarshalValues(data, uint8Size, UnsignedByte)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]uint8, len(vals))
	for i, v := range vals {
		w.Val[i] = uint8(v.Uint())
	}
	return nil
}

// Uint16 is a 16-bit integer setting.
type Uint16 struct {
	Type SettingType
	Val  []uint16
}

func (w Uint16) Size() int { return headerSize + len(w.Val)*uint16Size }

func (w Uint16) write(dst []byte) (int, error) {
	err := checkWrite(w.Type, len(w.Val), uint16Size, w.Size(), dst)
	if err != nil {
		return 0, err
	}
	dst[0] = byte(w.Type)
	dst[1] = byte(len(w.Val))
	for i, e := range w.Val {
		binary.LittleEndian.PutUint16(dst[headerSize+i*uint16Size:], e)
	}
	return w.Size(), nil
}

func (w *Uint16) UnmarshalBinary(data []byte) error {
	vals, err := unmarshalValues(data, uint16Size, UnsignedInt)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]uint16, len(vals))
	for i, v := range vals {
		w.Val[i] = uint16(v.Uint())
	}
	return nil
}

// Float32 is a 32-bit floating point setting.
type Float32 struct {
	Type SettingType
	Val  []float32
}

func (w Float32) Size() int { return headerSize + len(w.Val)*float32Size }

func (w Float32) write(dst []byte) (int, error) {
	err := checkWrite(w.Type, len(w.Val), float32Size, w.Size(), dst)
	if err != nil {
		return 0, err
	}
	dst[0] = byte(w.Type)
	dst[1] = byte(len(w.Val))
	for i, e := range w.Val {
		binary.LittleEndian.PutUint32(dst[headerSize+i*float32Size:], math.Float32bits(e))
	}
	return w.Size(), nil
}

func (w *Float32) UnmarshalBinary(data []byte) error {
	vals, err := unmarshalValues(data, float32Size, Float)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]float32, len(vals))
	for i, v := range vals {
		w.Val[i] = float32(v.Float())
	}
	return nil
}
