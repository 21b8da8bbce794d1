package model

import (
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	trainErrorPattern = regexp.MustCompile(`TRAIN_ERROR\s+([\d.]+)`)
	testErrorPattern  = regexp.MustCompile(`TEST_ERROR\s+([\d.]+)`)
	modelPathPattern  = regexp.MustCompile(`MODEL_PATH\s+(.+)`)
	modelNamePattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)
)

// TrainMetrics is what a training log reports about the run.
type TrainMetrics struct {
	TrainError *float64
	TestError  *float64
	ModelPath  string
}

// ParseTrainOutput picks the error figures and model path out of a
// training log. Missing markers leave the fields empty.
func ParseTrainOutput(out string) TrainMetrics {
	var m TrainMetrics
	m.TrainError = matchFloat(trainErrorPattern, out)
	m.TestError = matchFloat(testErrorPattern, out)
	if sub := modelPathPattern.FindStringSubmatch(out); sub != nil {
		m.ModelPath = strings.TrimSpace(sub[1])
	}
	return m
}

func matchFloat(re *regexp.Regexp, out string) *float64 {
	sub := re.FindStringSubmatch(out)
	if sub == nil {
		return nil
	}
	v, err := strconv.ParseFloat(sub[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// LastJSONObject returns the JSON object that closes a tester log, or
// false when the log does not end in one.
func LastJSONObject(out string) (jsoniter.RawMessage, bool) {
	out = strings.TrimSpace(out)
	if !strings.HasSuffix(out, "}") {
		return nil, false
	}

	found := -1
	for i := strings.LastIndexByte(out, '{'); i >= 0; i = strings.LastIndexByte(out[:i], '{') {
		if jsoniter.Valid([]byte(out[i:])) {
			found = i
		}
	}
	if found < 0 {
		return nil, false
	}
	return jsoniter.RawMessage(out[found:]), true
}

func ValidModelName(name string) bool {
	return modelNamePattern.MatchString(name)
}
