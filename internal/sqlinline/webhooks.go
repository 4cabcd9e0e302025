package sqlinline

const QInsertWebhookEvent = `--sql 105f5e00-f648-40d8-a739-a11dabd6fdde
insert into webhook_events(id, event_type, payment_intent_id, amount_minor, currency, payload)
values ($1::text, $2::text, $3::text, $4::bigint, $5::text, coalesce($6::jsonb, '{}'::jsonb))
on conflict (id) do nothing;
`

const QSelectPendingWebhookEvents = `--sql 726abf89-9b0a-4db9-b8f1-5960cf31c4f8
select id, event_type, payment_intent_id, amount_minor, currency
from webhook_events
where processed_at is null
order by received_at asc
limit $1::int;
`

const QMarkWebhookEventProcessed = `--sql d99bac03-9689-4e53-9d57-7ea88bb07bff
update webhook_events
set processed_at = now()
where id = $1::text;
`

const QInsertReconciledFund = `--sql 5c87ef9a-57e9-42b2-ac62-c4f5e5a6f536
insert into funds(user_email, user_name, amount_minor, currency, payment_intent_id, status, metadata)
values ('', $1::text, $2::bigint, $3::text, $4::text, 'succeeded', $5::jsonb)
on conflict (payment_intent_id) do nothing;
`
