package sim

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"vcpusim/bits"
)

func openInputFile(path string) (*os.File, *bufio.Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	scanner := bufio.NewScanner(f)
	return f, scanner, nil
}

func openOutputFile(path string) (*os.File, *bufio.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, bufio.NewWriter(f), nil
}

// closeFiles flushes and closes every open file handle, as the stop
// opcode requires (§4.5 Termination).
func (s *Simulator) closeFiles() {
	for name, w := range s.state.OutputFiles {
		w.Flush()
		if f, ok := s.state.openOutputFiles[name]; ok {
			f.Close()
		}
	}
	for name, f := range s.state.openInputFiles {
		_ = name
		f.Close()
	}
}

// fileRead implements file_read {file_name}: reads one decimal integer
// line from the named input file and pushes it as i32.
func (s *Simulator) fileRead(fileName string) error {
	scanner, ok := s.state.InputFiles[fileName]
	if !ok {
		return fmt.Errorf("sim: file_read: unknown input file %q", fileName)
	}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("sim: file_read %q: %w", fileName, err)
		}
		return fmt.Errorf("sim: file_read %q: end of input", fileName)
	}
	// The line is parsed as a decimal integer (§9 Open Question: the
	// original source reads via a non-standard getline() and casts the
	// text directly via int32(value); this assumes decimal parsing).
	v, err := strconv.ParseInt(scanner.Text(), 10, 64)
	if err != nil {
		return fmt.Errorf("sim: file_read %q: %w", fileName, err)
	}
	s.state.push(int32(v))
	return nil
}

// fileWriteLine appends one formatted line to the named output file.
func (s *Simulator) fileWriteLine(fileName, line string) error {
	w, ok := s.state.OutputFiles[fileName]
	if !ok {
		return fmt.Errorf("sim: file write: unknown output file %q", fileName)
	}
	if _, err := w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("sim: file write %q: %w", fileName, err)
	}
	return w.Flush()
}

func (s *Simulator) fileWriteSigned(fileName string, v int32) error {
	return s.fileWriteLine(fileName, fmt.Sprintf("%d", v))
}

func (s *Simulator) fileWriteUnsigned(fileName string, v int32) error {
	return s.fileWriteLine(fileName, fmt.Sprintf("%d", uint32(v)))
}

func (s *Simulator) fileWriteFloat(fileName string, bitsVal int32) error {
	f := bits.BitsToFloat(bitsVal)
	return s.fileWriteLine(fileName, fmt.Sprintf("%f", f))
}

// fileWriteLong formats the joined 64-bit integer with %f, per §4.5/§6:
// long_file_write's output is %f-formatted like the float variants, not
// decimal.
func (s *Simulator) fileWriteLong(fileName string, hi, lo int32) error {
	v := bits.JoinWords(hi, lo)
	return s.fileWriteLine(fileName, fmt.Sprintf("%f", float64(v)))
}

func (s *Simulator) fileWriteLongFloat(fileName string, hi, lo int32) error {
	d := bits.BitsToDouble(bits.JoinDoubleBits(hi, lo))
	return s.fileWriteLine(fileName, fmt.Sprintf("%f", d))
}
