// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"regexp"
	"strings"
)

var (
	// a key missing its opening quote, e.g. {company_name": or , job":
	unquotedKeyPattern = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_ ]*)":`)

	// a comma directly before a closing brace or bracket
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// repairJSON fixes the formatting mistakes small models commonly make in
// JSON mode: markdown fences, prose around the object, keys missing their
// opening quote and trailing commas.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}

	s = unquotedKeyPattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := unquotedKeyPattern.FindStringSubmatch(m)
		return parts[1] + "\"" + strings.TrimSpace(parts[2]) + "\":"
	})
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}
