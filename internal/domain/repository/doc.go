// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente. La implementación concreta vive en
// internal/store/pg; los tests de los services usan fakes en memoria.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
//   - Las operaciones "one-shot" (Consume, Use, Rotate) son atómicas:
//     el check y la marca de uso ocurren en el mismo statement.
package repository
