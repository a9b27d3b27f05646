// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package translate renders user facing messages in the language of the
// current locale. Keys are English fmt formats.
package translate

import (
	"log/slog"
	"sync"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	mu      sync.RWMutex
	printer *message.Printer
)

// spanish holds the Spanish catalog; keys missing here print in English.
var spanish = map[string]string{
	"Supported":        "Soportado",
	"Not supported":    "No soportado",
	"Yes":              "Sí",
	"No":               "No",
	"Unknown":          "Desconocido",
	"CPU Features: %s": "Características de la CPU: %s",

	"Processor Version":      "Versión del procesador",
	"Additional Information": "Información adicional",
	"Feature Flags":          "Indicadores de características",
	"Microarchitecture":      "Microarquitectura",
	"Insights":               "Observaciones",

	"Stepping ID":         "ID de revisión",
	"Model":               "Modelo",
	"Family ID":           "ID de familia",
	"Processor Type":      "Tipo de procesador",
	"Reserved A":          "Reservado A",
	"Reserved B":          "Reservado B",
	"Extended Model ID":   "ID de modelo extendido",
	"Extended Family ID":  "ID de familia extendida",
	"Effective Model":     "Modelo efectivo",
	"Display Family":      "Familia mostrada",
	"Signature":           "Firma",
	"Brand Index":         "Índice de marca",
	"CLFLUSH Line Size":   "Tamaño de línea CLFLUSH",
	"Max Addressable IDs": "IDs direccionables máximos",
	"Local APIC ID":       "ID de APIC local",
	"Register":            "Registro",
	"Bit":                 "Bit",
	"Name":                "Nombre",
	"Description":         "Descripción",
	"Memory Channels":     "Canales de memoria",
	"Threads per Core":    "Hilos por núcleo",
	"Cache Ways":          "Vías de caché",
	"Vendor":              "Fabricante",
	"Recommendation":      "Recomendación",
	"Justification":       "Justificación",

	"requirement satisfied: %s":             "requisito cumplido: %s",
	"requirement not satisfied: %s":         "requisito no cumplido: %s",
	"missing features: %s":                  "características ausentes: %s",
	"no differences":                        "sin diferencias",
	"added: %s":                             "añadidas: %s",
	"removed: %s":                           "eliminadas: %s",
	"%s changed from %s to %s":              "%s cambió de %s a %s",
	"snapshot written to %s":                "instantánea escrita en %s",
	"report written to %s":                  "informe escrito en %s",
	"%s matches":                            "%s coincide",
	"%s mismatch: decoded %s, reference %s": "%s no coincide: decodificado %s, referencia %s",
}

// supported lists the catalog languages; the first is the fallback.
var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

func init() {
	for key, msg := range spanish {
		if err := message.SetString(language.Spanish, key, msg); err != nil {
			slog.Warn("failed to register message", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	locales, err := locale.GetLocales()
	if err != nil {
		slog.Debug("failed to detect locale", slog.String("error", err.Error()))
	}
	printer = message.NewPrinter(match(locales...))
}

// match returns the catalog language closest to the given locale names.
func match(locales ...string) language.Tag {
	var tags []language.Tag
	for _, l := range locales {
		t, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		return supported[0]
	}
	_, index, _ := matcher.Match(tags...)
	return supported[index]
}

// SetLanguage overrides the detected locale with a BCP 47 tag, e.g. "es".
func SetLanguage(tag string) error {
	if _, err := language.Parse(tag); err != nil {
		return err
	}
	p := message.NewPrinter(match(tag))
	mu.Lock()
	defer mu.Unlock()
	printer = p
	return nil
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	mu.RLock()
	defer mu.RUnlock()
	return printer.Sprintf(key, args...)
}
