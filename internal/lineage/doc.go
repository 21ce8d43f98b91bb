// Package lineage строит каталог полей предков узла.
//
// Каталог нужен, чтобы связать поле конфигурации узла с полем
// одного из его предков без выполнения графа: UpstreamCatalog
// показывает текущие значения конфигурации предков, Map переносит
// выбранное значение и записывает FieldMapping.
package lineage
