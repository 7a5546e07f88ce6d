package parser

import (
	"reflect"
	"testing"
)

func collect(data []byte, splits []int) []Command {
	var got []Command
	p := New(SinkFunc(func(c Command) { got = append(got, c) }), false, nil)
	start := 0
	for _, s := range splits {
		p.Process(data[start:s])
		start = s
	}
	p.Process(data[start:])
	return got
}

func TestByteAtATimeMatchesWholeBuffer(t *testing.T) {
	data := []byte("hello\x1b[5;7H\x1b[31mx\x1b[?1049h")

	whole := collect(data, nil)

	var perByte []int
	for i := 1; i < len(data); i++ {
		perByte = append(perByte, i)
	}
	split := collect(data, perByte)

	if !reflect.DeepEqual(whole, split) {
		t.Fatalf("byte-at-a-time split produced a different command stream:\n%+v\nvs\n%+v", split, whole)
	}
}

func TestArbitraryPrefixSplitsAgree(t *testing.T) {
	data := []byte("abc\x1b[2@\x1bOA\xe2\x82\xac\x1b]0;title\x07done")

	base := collect(data, nil)
	for _, splits := range [][]int{
		{2, 5, 9},
		{1},
		{len(data) - 1},
		{3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	} {
		got := collect(data, splits)
		if !reflect.DeepEqual(base, got) {
			t.Fatalf("split %v disagreed with unsplit stream:\n%+v\nvs\n%+v", splits, got, base)
		}
	}
}

func TestCsiParamsParsing(t *testing.T) {
	var got Command
	p := New(SinkFunc(func(c Command) { got = c }), false, nil)
	p.Process([]byte("\x1b[5;7H"))
	if got.Kind != CmdCsi || got.Final != 'H' {
		t.Fatalf("expected CUP command, got %+v", got)
	}
	if !reflect.DeepEqual(got.Params, []int{5, 7}) {
		t.Fatalf("expected params [5 7], got %v", got.Params)
	}
}

func TestCsiPrivateMarker(t *testing.T) {
	var got Command
	p := New(SinkFunc(func(c Command) { got = c }), false, nil)
	p.Process([]byte("\x1b[?1049h"))
	if got.Private != '?' || got.Final != 'h' {
		t.Fatalf("expected private ? h command, got %+v", got)
	}
	if !reflect.DeepEqual(got.Params, []int{1049}) {
		t.Fatalf("expected params [1049], got %v", got.Params)
	}
}

func TestUtf8Decode(t *testing.T) {
	var got Command
	p := New(SinkFunc(func(c Command) { got = c }), false, nil)
	p.Process([]byte{0xE2, 0x82, 0xAC})
	if got.Kind != CmdPrint || got.Rune != '€' {
		t.Fatalf("expected euro sign print, got %+v", got)
	}
}

func TestOscTerminatedByBel(t *testing.T) {
	var got Command
	p := New(SinkFunc(func(c Command) { got = c }), false, nil)
	p.Process([]byte("\x1b]0;hello\x07"))
	if got.Kind != CmdOscComplete || got.OSCData != "0;hello" {
		t.Fatalf("expected OSC complete with '0;hello', got %+v", got)
	}
}

func TestOscTerminatedByST(t *testing.T) {
	var got Command
	p := New(SinkFunc(func(c Command) { got = c }), false, nil)
	p.Process([]byte("\x1b]7;file:///tmp\x1b\\"))
	if got.Kind != CmdOscComplete || got.OSCData != "7;file:///tmp" {
		t.Fatalf("expected OSC complete with '7;file:///tmp', got %+v", got)
	}
}
