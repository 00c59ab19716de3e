// Copyright (c) 2026 John Earle
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

package harvest

// baseKeywords is the fixed subject keyword list every harvest searches
// for. Accented and unaccented spellings are both present because Gmail
// subject matching is literal.
var baseKeywords = []string{
	"DTE",
	"Documento Tributario Electrónico",
	"Documento Tributario Electronico",
	"Documento Electrónico",
	"Documento Electronico",
	"Comprobante",
	"Documento DTE",
	"Factura electrónica",
	"Factura electronica",
	"Facturación electrónica",
	"Facturacion electronica",
	"Facturación digital",
	"Facturación Digital",
	"Factura",
	"facturacion",
	"Comprobante Electrónico",
	"Comprobante electronico",
	"Comprobante de pago electrónico",
	"Comprobante de pago electronico",
	"Comprobante de Crédito Fiscal",
	"Comprobante de Credito Fiscal",
	"Crédito Fiscal",
	"Credito Fiscal",
	"Boleta electrónica",
	"Boleta electronica",
	"Nota de crédito",
	"Nota de credito",
	"Nota de débito",
	"Nota de debito",
	"Factura digital",
	"Detalle de Factura",
	"Detalle de factura",
	"Notificación de DTE",
}

// BaseKeywords returns a copy of the fixed keyword list, for display in
// the keywords API.
func BaseKeywords() []string {
	out := make([]string, len(baseKeywords))
	copy(out, baseKeywords)
	return out
}

// MergeKeywords unions the base keyword list with user-supplied custom
// keywords, preserving first-seen order and dropping exact duplicates.
func MergeKeywords(custom []string) []string {
	seen := make(map[string]struct{}, len(baseKeywords)+len(custom))
	merged := make([]string, 0, len(baseKeywords)+len(custom))
	for _, k := range baseKeywords {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, k)
	}
	for _, k := range custom {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, k)
	}
	return merged
}
