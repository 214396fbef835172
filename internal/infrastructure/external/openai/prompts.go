package openai

const visionSystemPrompt = "You are an expert in reading supplier invoices. You read vendor names, invoice numbers, dates and amounts with perfect accuracy. Always respond with valid JSON."

const visionPrompt = `Carefully examine this supplier invoice and extract ALL information.

This is a financial document feeding an accounts payable workflow. Extract with full accuracy:

HEADER FIELDS:
- vendor_name: Legal name of the issuing company
- vendor_code: Supplier/creditor number if printed (often near the address block)
- invoice_number: The invoice number as printed
- invoice_date: Issue date in YYYY-MM-DD format
- due_date: Payment due date in YYYY-MM-DD format, if printed
- currency: ISO 4217 code (EUR, USD, ...)

AMOUNT FIELDS:
- total_amount: Gross total including tax
- tax_amount: Total tax, 0 if not shown

LINE ITEMS - extract ALL as an array:
- description
- quantity
- unit_price
- amount

OTHER:
- remarks: Payment terms, references or other notes

Return a JSON object with this exact structure:
{
  "vendor_name": "string",
  "vendor_code": "string",
  "invoice_number": "string",
  "invoice_date": "YYYY-MM-DD",
  "due_date": "YYYY-MM-DD",
  "currency": "string",
  "total_amount": number,
  "tax_amount": number,
  "items": [{"description": "string", "quantity": number, "unit_price": number, "amount": number}],
  "remarks": "string"
}

IMPORTANT:
- Extract EXACTLY what you see. Do not guess or make up values.
- For amounts, use numbers without currency symbols.
- If a field is not visible or unclear, use empty string "" or 0.`
