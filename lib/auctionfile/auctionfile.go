package auctionfile

import (
	"bidsniper/lib/auction"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrNoAuctions   = errors.New("cannot find any auctions")
	ErrFirstNoPrice = errors.New("cannot find price on first auction")
	ErrInvalidLine  = errors.New("invalid auction line")
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isPriceChar(c byte) bool {
	return isDigit(c) || c == '.' || c == ','
}

func skipBlanks(line string, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t' || line[i] == '\v' || line[i] == '\f') {
		i++
	}
	return i
}

// ends reports whether nothing but a comment follows offset i.
func ends(line string, i int) bool {
	return i >= len(line) || line[i] == '#'
}

// parseLine splits an auction line into its id and price, price is empty
// when the line does not state one.
func parseLine(line string) (id, price string, err error) {
	i := 0
	for i < len(line) && isDigit(line[i]) {
		i++
	}
	id = line[:i]

	i = skipBlanks(line, i)
	if ends(line, i) {
		return id, "", nil
	}

	start := i
	for i < len(line) && isPriceChar(line[i]) {
		i++
	}
	price = line[start:i]
	if !strings.ContainsAny(price, "0123456789") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidLine, line)
	}

	i = skipBlanks(line, i)
	if !ends(line, i) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidLine, line)
	}
	return id, price, nil
}

// Parse reads a batch of auctions, one `<id> [<price>]` per line. Blank
// lines, comments and configuration entries are skipped. An auction
// without a price inherits the price of the auction before it. Any
// malformed line rejects the whole batch.
func Parse(r io.Reader) ([]*auction.Auction, error) {
	var auctions []*auction.Auction

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimLeft(scanner.Text(), " \t\r\v\f")
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' || isAlpha(line[0]) {
			continue
		}
		if !isDigit(line[0]) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLine, line)
		}

		id, price, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		if price == "" {
			if len(auctions) == 0 {
				return nil, ErrFirstNoPrice
			}
			price = auctions[len(auctions)-1].BidPriceText
		}
		auctions = append(auctions, auction.New(id, price))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(auctions) == 0 {
		return nil, ErrNoAuctions
	}
	return auctions, nil
}

// ParseEntries reads the `name = value` configuration entries of an
// auction file. Lines starting with a digit are auctions and skipped, a
// name without a value maps to the empty string.
func ParseEntries(r io.Reader) (map[string]string, error) {
	entries := map[string]string{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !isAlpha(line[0]) {
			continue
		}

		end := strings.IndexAny(line, " \t=")
		if end < 0 {
			entries[line] = ""
			continue
		}
		name := line[:end]
		value := strings.TrimLeft(line[end:], " \t")
		value = strings.TrimPrefix(value, "=")
		entries[name] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func ReadFile(path string) ([]*auction.Auction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open auction file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func ReadEntries(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open auction file: %w", err)
	}
	defer f.Close()
	return ParseEntries(f)
}
