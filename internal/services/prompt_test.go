package services

import (
	"strings"
	"testing"

	"github.com/gestaozap/backoffice/internal/models"
)

func TestBuildExtractionPromptCategories(t *testing.T) {
	categories := []models.Category{
		{ID: 12, Nome: "Fornecedores", Tipo: "despesa"},
		{ID: 34, Nome: "Vendas", Tipo: "receita"},
	}

	prompt := BuildExtractionPrompt(categories, nil)

	if !strings.Contains(prompt, "12 - Fornecedores (despesa)") {
		t.Errorf("prompt missing category line for Fornecedores")
	}
	if !strings.Contains(prompt, "34 - Vendas (receita)") {
		t.Errorf("prompt missing category line for Vendas")
	}
	if strings.Contains(prompt, "FORNECEDORES CONHECIDOS") {
		t.Errorf("supplier section rendered without supplier entries")
	}
	if strings.Contains(prompt, "CONHECIMENTO ESPECIFICO") {
		t.Errorf("instruction section rendered without instruction entries")
	}
}

func TestBuildExtractionPromptNoCategories(t *testing.T) {
	prompt := BuildExtractionPrompt(nil, nil)
	if !strings.Contains(prompt, "Categoria Geral") {
		t.Errorf("empty category list should fall back to Categoria Geral")
	}
}

func TestBuildExtractionPromptKnowledgeSections(t *testing.T) {
	knowledge := []models.KnowledgeEntry{
		{Type: models.KnowledgeSupplier, Content: "Distribuidora Alfa"},
		{Type: models.KnowledgeSupplier, Content: "Gráfica Beta"},
		{Type: models.KnowledgeInstruction, Content: "Lançamentos de Uber são sempre Transporte"},
	}

	prompt := BuildExtractionPrompt(nil, knowledge)

	if !strings.Contains(prompt, "Distribuidora Alfa, Gráfica Beta") {
		t.Errorf("suppliers not joined into supplier section")
	}
	if !strings.Contains(prompt, "- Lançamentos de Uber são sempre Transporte") {
		t.Errorf("instruction not rendered as list item")
	}
}

func TestBuildExtractionPromptOutputContract(t *testing.T) {
	prompt := BuildExtractionPrompt(nil, nil)

	for _, required := range []string{
		"DD/MM/YYYY",
		"categoria_sugerida_id",
		`'receita' ou 'despesa'`,
		"NEGATIVOS",
		"Empréstimo Liberado",
		"Amortização",
		`assuma "despesa"`,
	} {
		if !strings.Contains(prompt, required) {
			t.Errorf("prompt missing required contract fragment %q", required)
		}
	}
}
