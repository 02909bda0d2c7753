package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// markdownToPDF walks the Markdown AST and renders it into an A4 PDF
func markdownToPDF(markdown []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(markdown))

	renderer := &pdfRenderer{pdf: pdf, source: markdown}
	if err := ast.Walk(doc, renderer.walk); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont("Arial", style, 9)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Text(r.source)))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.List:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(15 + float64(r.listLevel)*5)
			r.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			r.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) heading(n *ast.Heading, entering bool) {
	if entering {
		r.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		r.pdf.SetFont("Arial", "B", size)
	} else {
		r.pdf.Ln(6)
		r.updateFont()
	}
}

func (r *pdfRenderer) table(n *extast.Table) {
	var rows [][]string

	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch row := child.(type) {
			case *extast.TableRow:
				rows = append(rows, r.cells(row))
			case *extast.TableHeader:
				collect(row)
			}
		}
	}
	collect(n)

	if len(rows) == 0 {
		return
	}

	r.pdf.Ln(2)
	columns := len(rows[0])
	pageWidth, _ := r.pdf.GetPageSize()
	colWidth := (pageWidth - 20) / float64(columns)

	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont("Arial", "B", 9)
			r.pdf.SetFillColor(240, 240, 240)
		} else {
			r.updateFont()
			r.pdf.SetFillColor(255, 255, 255)
		}
		for _, cell := range row {
			r.pdf.CellFormat(colWidth, 6, cell, "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(2)
}

func (r *pdfRenderer) cells(n ast.Node) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(r.source)))
		}
	}
	return row
}
