package services

import (
	"fmt"
	"strings"

	"github.com/gestaozap/backoffice/internal/models"
)

// BuildExtractionPrompt assembles the full extraction instruction: the fixed
// template, the available categories and the organization's knowledge base.
// The output contract (bare JSON array, DD/MM/YYYY dates, signed valor with
// matching tipo) is what the response parser and the ledger commit expect;
// change both together or neither.
func BuildExtractionPrompt(categories []models.Category, knowledge []models.KnowledgeEntry) string {
	categoriesContext := "Categoria Geral"
	if len(categories) > 0 {
		var lines []string
		for _, c := range categories {
			lines = append(lines, fmt.Sprintf("%d - %s (%s)", c.ID, c.Nome, c.Tipo))
		}
		categoriesContext = strings.Join(lines, "\n")
	}

	var suppliers, instructions []string
	for _, entry := range knowledge {
		switch entry.Type {
		case models.KnowledgeSupplier:
			suppliers = append(suppliers, entry.Content)
		case models.KnowledgeInstruction:
			instructions = append(instructions, "- "+entry.Content)
		}
	}

	suppliersContext := ""
	if len(suppliers) > 0 {
		suppliersContext = fmt.Sprintf(`
# FORNECEDORES CONHECIDOS
Se a transação mencionar alguma dessas empresas, categorize como "Fornecedores":
---
%s
---
`, strings.Join(suppliers, ", "))
	}

	instructionsContext := ""
	if len(instructions) > 0 {
		instructionsContext = fmt.Sprintf(`
# CONHECIMENTO ESPECIFICO DA EMPRESA (REGRA SUPREMA)
Siga estas instruções adicionais com prioridade máxima:
---
%s
---
`, strings.Join(instructions, "\n"))
	}

	return fmt.Sprintf(`
# VISAO GERAL
Você é um Motor de Processamento de Dados Financeiros especializado em contabilidade brasileira e estruturação de dados para APIs. Sua função é converter entradas não estruturadas (texto cru vindo de OCR, PDFs ou imagens) em dados JSON estritamente tipados e normalizados.

# OBJETIVOS
1. Analisar o texto fornecido buscando padrões de transações financeiras.
2. Corrigir erros comuns de OCR (ex: 'O' em vez de '0', ',' em vez de '.') no contexto financeiro.
3. Classificar semanticamente cada transação com base na lista de categorias fornecida.
4. Retornar uma saída limpa, pronta para ser consumida por um parser de código.

# DIRETRIZES DE ANALISE
- Validação de OCR: Se encontrar textos truncados ou caracteres estranhos, tente inferir o conteúdo lógico baseado no contexto contábil.
- Datas: Converta qualquer formato de data encontrado para o padrão brasileiro DD/MM/YYYY. Se o ano não for explícito, assuma o ano corrente ou o mais provável pelo contexto do documento.
- Valores Monetários: Identifique valores em formato brasileiro (R$ X.XXX,XX). Converta para Float (X.XX). IMPORTANTE: Despesas devem ser valores NEGATIVOS (-X.XX) e Receitas POSITIVOS (X.XX).
- Direção do Fluxo (CRÍTICO):
  - "despesa": Sinais de menos (-), colunas "Débitos", "Saídas", ou valores entre parênteses. RETORNE VALOR NEGATIVO.
  - "receita": Sinais de mais (+), colunas "Créditos", "Entradas". RETORNE VALOR POSITIVO.
  - CASOS ESPECIAIS (EMPRÉSTIMOS):
     - "Empréstimo Liberado" / "Contratação" / "Crédito em Conta" -> RECEITA (+).
     - "Amortização" / "Pagamento de Parcela" / "Juros" -> DESPESA (-).
  - SE TIVER DÚVIDA, assuma "despesa" (negativo).

# PROTOCOLOS DE CATEGORIZACAO
Utilize a lista de categorias injetada no contexto. Para cada transação:
1. Analise a descrição da transação.
2. Busque uma correspondência semântica (não apenas palavra-chave exata) na lista de categorias.
3. Se houver alta confiança, atribua o ID e o Nome.
4. Se a transação for ambígua ou não se encaixar, defina categoria_sugerida_id como null.

# RESTRICOES DE SAIDA (CRITICO)
- A saída deve ser EXCLUSIVAMENTE o array JSON.
- NÃO utilize blocos de código markdown (como `+"```json"+`).
- NÃO inclua texto introdutório ou conclusivo.
- Se não houver transações, retorne apenas: []

# FORMATO DE RESPOSTA (JSON SCHEMA)
[
  {
    "data": "string (DD/MM/YYYY)",
    "descricao": "string (Texto corrigido e limpo)",
    "valor": number (Float, ex: -150.50),
    "tipo": "string ('receita' ou 'despesa')",
    "categoria_sugerida_id": number | null,
    "categoria_nome": "string | null"
  }
]

# CONTEXTO DE CATEGORIAS DISPONIVEIS
---
%s
---

%s

%s

# INPUT PARA PROCESSAMENTO
Analise o seguinte conteúdo extraído e gere o JSON:
`, categoriesContext, suppliersContext, instructionsContext)
}
