package sqlinline

const QInsertFund = `--sql 006763ae-f254-4415-bc28-03187f472d62
insert into funds(user_email, user_name, amount_minor, currency, payment_intent_id, status, metadata)
values ($1::text, $2::text, $3::bigint, $4::text, $5::text, $6::text, coalesce($7::jsonb, '{}'::jsonb))
returning id, created_at;
`

const QSelectFundByIntent = `--sql 34cb24ee-2cee-4626-bae2-a49abcd6b1d4
select id, user_email, user_name, amount_minor, currency, payment_intent_id, status, metadata, created_at
from funds
where payment_intent_id = $1::text;
`

const QListFunds = `--sql bef13f23-b932-4b17-bb94-5bd6cfea3b92
select id, user_email, user_name, amount_minor, currency, payment_intent_id, status, metadata, created_at
from funds
order by created_at desc
limit $1::int;
`

const QFundsTotal = `--sql 21f95d76-61ce-4e75-919b-5d90d89ed572
select count(*), coalesce(sum(amount_minor), 0)
from funds
where status = 'succeeded';
`
