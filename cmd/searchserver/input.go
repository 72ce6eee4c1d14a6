package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

const maxLineSize = 1 << 20

type inputDocument struct {
	Text    string
	Ratings []int
}

// input is the line-oriented stdin format:
//
//	stop words
//	N
//	document text   } N times
//	k r1 ... rk     }
//	query           until EOF
type input struct {
	scanner *bufio.Scanner
}

func newInput(r io.Reader) *input {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &input{scanner: s}
}

// readLine returns the next line and false at EOF.
func (in *input) readLine() (string, bool, error) {
	if !in.scanner.Scan() {
		return "", false, in.scanner.Err()
	}
	return strings.TrimRight(in.scanner.Text(), "\r"), true, nil
}

func (in *input) readLineWithNumber() (int, error) {
	line, ok, err := in.readLine()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperrors.New(apperrors.ErrInvalidInput, "unexpected end of input, want a number")
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, "line %q is not a number", line)
	}
	return n, nil
}

// readRatings parses "k r1 ... rk".
func (in *input) readRatings() ([]int, error) {
	line, ok, err := in.readLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "unexpected end of input, want ratings")
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 || count != len(fields)-1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "malformed ratings line %q", line)
	}
	ratings := make([]int, count)
	for i, f := range fields[1:] {
		r, err := strconv.Atoi(f)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "rating %q is not a number", f)
		}
		ratings[i] = r
	}
	return ratings, nil
}

func (in *input) readDocuments() ([]inputDocument, error) {
	n, err := in.readLineWithNumber()
	if err != nil {
		return nil, fmt.Errorf("reading document count: %w", err)
	}
	if n < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "negative document count %d", n)
	}
	docs := make([]inputDocument, 0, n)
	for i := 0; i < n; i++ {
		text, ok, err := in.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "input ended after %d of %d documents", i, n)
		}
		ratings, err := in.readRatings()
		if err != nil {
			return nil, fmt.Errorf("reading ratings of document %d: %w", i, err)
		}
		docs = append(docs, inputDocument{Text: text, Ratings: ratings})
	}
	return docs, nil
}
