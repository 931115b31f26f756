package util

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ExpandRange expands a range specification into individual values
// Supports formats like:
//   - "1-5" -> [1, 2, 3, 4, 5]
//   - "1,3,5" -> [1, 3, 5]
//   - "65536-65551" -> [65536, ..., 65551]
func ExpandRange(spec string) ([]int, error) {
	if spec == "" {
		return nil, nil
	}

	var result []int
	parts := strings.Split(spec, ",")

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			// Range: "1-5"
			rangeParts := strings.SplitN(part, "-", 2)
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}

			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid start value in range %s: %v", part, err)
			}

			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid end value in range %s: %v", part, err)
			}

			if start > end {
				return nil, fmt.Errorf("start value %d greater than end value %d in range %s", start, end, part)
			}

			for i := start; i <= end; i++ {
				result = append(result, i)
			}
		} else {
			// Single value
			val, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid value: %s", part)
			}
			result = append(result, val)
		}
	}

	// Sort and deduplicate
	sort.Ints(result)
	return dedupInts(result), nil
}

// ExpandASNRange expands an AS number pool specification and validates
// every member.
func ExpandASNRange(spec string) ([]uint32, error) {
	values, err := ExpandRange(spec)
	if err != nil {
		return nil, err
	}
	asns := make([]uint32, len(values))
	for i, v := range values {
		if err := ValidateASN(v); err != nil {
			return nil, err
		}
		asns[i] = uint32(v)
	}
	return asns, nil
}

// CompactRange compacts a list of integers into range notation
// [1, 2, 3, 5, 7, 8, 9] -> "1-3,5,7-9"
func CompactRange(values []int) string {
	if len(values) == 0 {
		return ""
	}

	// Sort and deduplicate
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	sorted = dedupInts(sorted)

	var parts []string
	start := sorted[0]
	end := sorted[0]

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == end+1 {
			end = sorted[i]
		} else {
			parts = append(parts, formatRange(start, end))
			start = sorted[i]
			end = sorted[i]
		}
	}
	parts = append(parts, formatRange(start, end))

	return strings.Join(parts, ",")
}

func formatRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

func dedupInts(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	result := []int{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			result = append(result, sorted[i])
		}
	}
	return result
}
