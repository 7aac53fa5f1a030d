package extraction

// systemInstruction is shared by the LLM backends.
const systemInstruction = `You extract structured data from warehouse documents (supplier invoices, delivery notes, credit notes, stock counts).
Return JSON only: supplier, document number, date, due date, credit note flag, FINAL document total including taxes, and the list of products.

UNIT RULES:
- Use 'UD' for units, pieces, single items (e.g. PZ, UN, Pezzo).
- Use 'KG' for weighed products (e.g. KG, Kilo, Grammi).
- Use 'CJ' for cases, boxes, packs, parcels (e.g. CA, CT, CS, Cassa, Box).

CATEGORY RULES:
- Use only 'Frutta' or 'Verdura'. Map 'Vegetables' to 'Verdura'.

DATES MUST be formatted YYYY-MM-DD.
Missing values = 0 or "".`

// userPrompt accompanies the document content.
const userPrompt = "Extract products and totals as JSON. Normalize units to UD, KG, CJ."

// jsonShape describes the expected output for backends without schema support.
const jsonShape = `{"documents":[{"supplier":"","documentNumber":"","date":"YYYY-MM-DD","dueDate":"YYYY-MM-DD","isCreditNote":false,"totalAmount":0,"products":[{"code":"","name":"","quantity":0,"unit":"UD","unitPrice":0,"totalPrice":0,"category":""}]}]}`
