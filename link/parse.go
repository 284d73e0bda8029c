package link

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Status is the last report received from the board.
type Status struct {
	Mode          string
	VelocityError float64
	HoodAngle     float64

	// Limit is the raw level of the limit input.
	Limit bool
}

func formatFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
	}
	s = strings.TrimRight(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// parseStatus reads a report like `<Run|Err:3.2|Hood:45|Lim:1>`. Fields
// missing from the report keep their value from stat.
func parseStatus(stat Status, data string) (*Status, error) {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(data, "<") || !strings.HasSuffix(data, ">") {
		return nil, errors.Errorf("malformed status %q", data)
	}
	data = strings.TrimPrefix(data, "<")
	data = strings.TrimSuffix(data, ">")
	parts := strings.Split(data, "|")
	stat.Mode = parts[0]
	var err error
	for _, s := range parts[1:] {
		sParts := strings.SplitN(s, ":", 2)
		if len(sParts) != 2 {
			return nil, errors.Errorf("malformed field %q", s)
		}
		switch sParts[0] {
		case "Err":
			stat.VelocityError, err = strconv.ParseFloat(sParts[1], 64)
		case "Hood":
			stat.HoodAngle, err = strconv.ParseFloat(sParts[1], 64)
		case "Lim":
			stat.Limit, err = strconv.ParseBool(sParts[1])
		}
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", sParts[0])
		}
	}
	return &stat, nil
}
