// Package xmlutil — тонкая обёртка над xmlquery/xpath для работы с
// XML-диалектами TED. Все выражения компилируются с явной картой префиксов
// пространств имён и кэшируются; текстовые аксессоры нормализуют пустые
// значения в nil.
package xmlutil

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Finder выполняет xpath-запросы с фиксированной картой префиксов
// пространств имён. Безопасен для конкурентного использования.
type Finder struct {
	ns map[string]string

	mu    sync.RWMutex
	cache map[string]*xpath.Expr
}

// NewFinder создаёт Finder с картой префикс -> URI пространства имён.
func NewFinder(ns map[string]string) *Finder {
	return &Finder{
		ns:    ns,
		cache: make(map[string]*xpath.Expr),
	}
}

func (f *Finder) compile(expr string) (*xpath.Expr, error) {
	f.mu.RLock()
	compiled, ok := f.cache[expr]
	f.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := xpath.CompileWithNS(expr, f.ns)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
	}

	f.mu.Lock()
	f.cache[expr] = compiled
	f.mu.Unlock()
	return compiled, nil
}

// One возвращает первый узел по выражению либо nil.
// Некорректное выражение — ошибка программирования, поэтому panic.
func (f *Finder) One(n *xmlquery.Node, expr string) *xmlquery.Node {
	compiled, err := f.compile(expr)
	if err != nil {
		panic(err)
	}
	return xmlquery.QuerySelector(n, compiled)
}

// All возвращает все узлы по выражению.
func (f *Finder) All(n *xmlquery.Node, expr string) []*xmlquery.Node {
	compiled, err := f.compile(expr)
	if err != nil {
		panic(err)
	}
	return xmlquery.QuerySelectorAll(n, compiled)
}

// Text возвращает обрезанный текст первого узла по выражению,
// nil — если узла нет или текст пуст.
func (f *Finder) Text(n *xmlquery.Node, expr string) *string {
	node := f.One(n, expr)
	if node == nil {
		return nil
	}
	return NodeText(node)
}

// Attr возвращает обрезанное значение атрибута первого узла по выражению.
func (f *Finder) Attr(n *xmlquery.Node, expr, attr string) *string {
	node := f.One(n, expr)
	if node == nil {
		return nil
	}
	return NodeAttr(node, attr)
}

// NodeText возвращает обрезанный внутренний текст узла, nil для пустого.
func NodeText(n *xmlquery.Node) *string {
	if n == nil {
		return nil
	}
	s := strings.TrimSpace(n.InnerText())
	if s == "" {
		return nil
	}
	return &s
}

// NodeAttr возвращает обрезанное значение атрибута узла, nil для пустого.
func NodeAttr(n *xmlquery.Node, name string) *string {
	if n == nil {
		return nil
	}
	s := strings.TrimSpace(n.SelectAttr(name))
	if s == "" {
		return nil
	}
	return &s
}

// LoadDocument читает и разбирает XML-файл.
func LoadDocument(path string) (*xmlquery.Node, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fd.Close()

	doc, err := xmlquery.Parse(fd)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// RootElement возвращает корневой элемент документа либо nil.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}
