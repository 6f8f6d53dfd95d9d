// Package benchmark compares jpool against the JSON libraries it is most
// often weighed against. It lives in its own module so the comparison
// libraries stay out of the main dependency graph.
package benchmark

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	firstNames = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry", "Ivy", "Jack"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	cities     = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio", "San Diego", "Dallas", "Austin"}
	countries  = []string{"USA", "Canada", "UK", "Germany", "France", "Australia", "Japan", "Brazil", "India", "Mexico"}
	themes     = []string{"light", "dark", "system", "custom"}
	tags       = []string{"premium", "verified", "active", "new", "featured", "trending", "popular", "recommended"}
)

func generateName(i int) string {
	return firstNames[i%len(firstNames)] + " " + lastNames[(i*7)%len(lastNames)]
}

// GenerateUsers builds a document holding count user records under
// "users". Output is deterministic for a given count; count=50000 yields
// roughly 16MB.
func GenerateUsers(count int) []byte {
	var sb strings.Builder
	sb.Grow(count*350 + 64)

	sb.WriteString(`{"metadata":{"version":"1.0","count":`)
	sb.WriteString(strconv.Itoa(count))
	sb.WriteString(`},"users":[`)
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"id":%d,"name":"%s","email":"user%d@example.com","age":%d,"active":%t,"score":%.2f,"tags":["%s","%s"],"profile":{"bio":"User %d biography with \"quoted\" text","address":{"street":"%d Main Street","city":"%s","country":"%s","zip":"%05d"}},"settings":{"theme":"%s","fontSize":%d,"ratio":%de-3}}`,
			i,
			generateName(i),
			i,
			18+(i%62),
			i%3 != 0,
			float64(50+(i%50))+float64(i%100)/100.0,
			tags[i%len(tags)], tags[(i+3)%len(tags)],
			i,
			100+(i%900),
			cities[i%len(cities)],
			countries[i%len(countries)],
			10000+(i%90000),
			themes[i%len(themes)],
			12+(i%8),
			i%1000,
		)
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

// GenerateDeep builds depth nested arrays around a single number.
func GenerateDeep(depth int) []byte {
	return []byte(strings.Repeat("[", depth) + "1" + strings.Repeat("]", depth))
}

// GenerateNumbers builds a flat array of n numbers mixing integers,
// fractions and exponents.
func GenerateNumbers(n int) []byte {
	buf := make([]byte, 0, n*8)
	buf = append(buf, '[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf = append(buf, ',')
		}
		switch i % 3 {
		case 0:
			buf = strconv.AppendInt(buf, int64(i), 10)
		case 1:
			buf = strconv.AppendFloat(buf, float64(i)/7, 'f', 4, 64)
		default:
			buf = strconv.AppendFloat(buf, float64(i)*1e9, 'e', -1, 64)
		}
	}
	buf = append(buf, ']')
	return buf
}

// DataSizeInfo describes a generated document relative to typical cache
// sizes.
type DataSizeInfo struct {
	Bytes       int
	ExceedsL2   bool // 256KB
	ExceedsL3   bool // 8MB
	Description string
}

// GetDataSizeInfo returns size information for data.
func GetDataSizeInfo(data []byte) DataSizeInfo {
	n := len(data)
	info := DataSizeInfo{
		Bytes:     n,
		ExceedsL2: n > 256*1024,
		ExceedsL3: n > 8*1024*1024,
	}
	kb := float64(n) / 1024
	switch {
	case info.ExceedsL3:
		info.Description = fmt.Sprintf("%.2f MB (exceeds L3 cache)", kb/1024)
	case info.ExceedsL2:
		info.Description = fmt.Sprintf("%.2f KB (exceeds L2 cache)", kb)
	default:
		info.Description = fmt.Sprintf("%.2f KB", kb)
	}
	return info
}
